package grpcapi

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"distress-audio-triage-service/internal/observability/logging"
	"distress-audio-triage-service/internal/service/analysis"
)

// Service and method names.
const (
	ServiceName        = "distress.v1.DistressTriage"
	AnalyzeAudioMethod = "/" + ServiceName + "/AnalyzeAudio"
)

// Request metadata keys.
const (
	MetadataRequestID   = "x-request-id"
	MetadataContentType = "x-audio-content-type"
)

// DistressTriageServer is the server API for the DistressTriage service.
type DistressTriageServer interface {
	AnalyzeAudio(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error)
}

// ServiceDesc describes the DistressTriage service. Requests carry raw audio in
// a BytesValue and responses carry the analysis response as a Struct.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DistressTriageServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AnalyzeAudio",
			Handler:    analyzeAudioHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "distress/v1/distress.proto",
}

func analyzeAudioHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DistressTriageServer).AnalyzeAudio(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AnalyzeAudioMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DistressTriageServer).AnalyzeAudio(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Analyzer is the part of *analysis.Analyzer the server needs.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error)
}

// Server implements DistressTriageServer on top of an Analyzer.
type Server struct {
	analyzer Analyzer
	logger   zerolog.Logger
}

// NewServer creates a DistressTriage server.
func NewServer(analyzer Analyzer) *Server {
	return &Server{
		analyzer: analyzer,
		logger:   logging.WithComponent("grpc"),
	}
}

// Register registers the DistressTriage service on g.
func Register(g grpc.ServiceRegistrar, analyzer Analyzer) *Server {
	s := NewServer(analyzer)
	g.RegisterService(&ServiceDesc, s)
	return s
}

// AnalyzeAudio transcribes and classifies the audio in the request.
func (s *Server) AnalyzeAudio(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	req := analysis.Request{
		Audio:  in.GetValue(),
		Source: "grpc",
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		req.RequestID = first(md.Get(MetadataRequestID))
		req.ContentType = first(md.Get(MetadataContentType))
	}

	report, err := s.analyzer.Analyze(ctx, req)
	switch {
	case errors.Is(err, analysis.ErrNoAudio), errors.Is(err, analysis.ErrAudioTooLarge):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case err != nil:
		s.logger.Error().Err(err).Str("requestId", req.RequestID).Msg("Analysis failed")
		return nil, status.Error(codes.Internal, err.Error())
	}

	out, err := encodeResponse(report.Response())
	if err != nil {
		s.logger.Error().Err(err).Str("requestId", report.RequestID).Msg("Failed to encode response")
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
