// Package grpcserver implements the CurationService gRPC server.
//
// It delegates all business logic to curation.Service and handles only the
// gRPC transport concerns: error mapping and conversion between the domain
// model and google.protobuf.Struct messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"artfair/curation-service/internal/curation"
	"artfair/curation-service/internal/model"
)

const serviceName = "curation.v1.CurationService"

// CurationServer is the server API for curation.v1.CurationService.
type CurationServer interface {
	GetGallery(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListGalleries(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetValidationMap(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// Service is the read surface the server needs. *curation.Service satisfies it.
type Service interface {
	ListGalleries(ctx context.Context) ([]model.CanonicalGallery, error)
	GetGallery(ctx context.Context, galleryID string) (*model.CanonicalGallery, error)
	ValidationMap(ctx context.Context, ids []string) (map[string]curation.ValidationView, error)
}

// Server implements CurationServer.
type Server struct {
	svc Service
}

// NewServer constructs a gRPC Server backed by svc.
func NewServer(svc Service) *Server {
	return &Server{svc: svc}
}

// Register adds the curation and health services to gs.
func Register(gs *grpc.Server, srv CurationServer) *health.Server {
	gs.RegisterService(&ServiceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// GetGallery expects {"galleryId": "..."} and returns the gallery.
func (s *Server) GetGallery(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.svc.GetGallery(ctx, req.GetFields()["galleryId"].GetStringValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(g)
}

// ListGalleries returns {"galleries": [...]}, best quality first.
func (s *Server) ListGalleries(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	galleries, err := s.svc.ListGalleries(ctx)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"galleries": galleries})
}

// GetValidationMap expects {"ids": [...]} and returns {"validations": {id: ...}}.
func (s *Server) GetValidationMap(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var ids []string
	for _, v := range req.GetFields()["ids"].GetListValue().GetValues() {
		if id := v.GetStringValue(); id != "" {
			ids = append(ids, id)
		}
	}
	m, err := s.svc.ValidationMap(ctx, ids)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"validations": m})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, curation.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	var ve *curation.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	return status.Error(codes.Internal, "internal server error")
}

// toStruct converts v through its JSON form so the field names match the
// HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
