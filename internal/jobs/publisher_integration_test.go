//go:build integration

package jobs_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artfair/curation-service/internal/jobs"
	"artfair/curation-service/internal/testutil/containers"
)

func TestRedisPublisher_DeliversJSON(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	sub := rc.Client.Subscribe(ctx, jobs.ChannelListingsValidated)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := jobs.NewRedisPublisher(rc.Client)
	require.NoError(t, pub.Publish(ctx, jobs.ChannelListingsValidated, jobs.Event{
		Type: jobs.ChannelListingsValidated, RunID: "run-1", Job: jobs.JobValidation,
		Summary: map[string]int{"checked": 3},
	}))

	select {
	case msg := <-sub.Channel():
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "run-1", got["runId"])
		assert.Equal(t, "validation", got["job"])
		assert.Equal(t, 3.0, got["summary"].(map[string]any)["checked"])
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}
