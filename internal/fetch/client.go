// Package fetch performs single-page HTTP GETs for the crawlers and reduces
// the response to visible text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultUserAgent identifies the crawler to gallery sites.
	DefaultUserAgent = "ArtfairCurationBot/1.0 (+https://artfair.app/bot)"

	maxBodyBytes = 2 << 20
)

// Page is a fetched document. Text is the whitespace-collapsed visible text
// with script, style and noscript content removed.
type Page struct {
	RequestURL string
	FinalURL   string
	StatusCode int
	HTML       string
	Text       string
}

// StatusError is returned for a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// Client fetches pages with a fixed User-Agent and a per-request timeout.
// Redirects are followed by the underlying http.Client.
type Client struct {
	UserAgent string
	Timeout   time.Duration
	client    *http.Client
}

// NewClient constructs a Client. An empty userAgent selects DefaultUserAgent.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		UserAgent: userAgent,
		Timeout:   timeout,
		client:    &http.Client{},
	}
}

// WithHTTPClient swaps the transport client, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// Get fetches rawURL. A non-2xx response yields a *StatusError; transport
// failures and timeouts are returned wrapped.
func (c *Client) Get(ctx context.Context, rawURL string) (*Page, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{URL: finalURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	html := string(body)
	return &Page{
		RequestURL: rawURL,
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		HTML:       html,
		Text:       HTMLToText(html),
	}, nil
}

// HTMLToText returns the visible text of an HTML document. Markup that
// cannot be parsed is returned with whitespace collapsed.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style, noscript, template").Remove()

	var b strings.Builder
	collectText(doc.Selection, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

// collectText writes every text node under s, each followed by a space so
// adjacent block elements do not run together.
func collectText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
			b.WriteByte(' ')
			return
		}
		collectText(c, b)
	})
}

// EnsureScheme prefixes https:// to a bare domain. It returns "" for blank
// input.
func EnsureScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + strings.TrimPrefix(raw, "//")
}

// IsHTTPURL reports whether raw is an absolute http or https URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}
