package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"distress-audio-triage-service/internal/models"
)

// Client calls the DistressTriage service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a DistressTriage client on an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// CallOptions tags a call with a request id and audio content type. Empty
// values are not sent.
type CallOptions struct {
	RequestID   string
	ContentType string
}

// AnalyzeAudio sends audio for analysis and decodes the response.
func (c *Client) AnalyzeAudio(ctx context.Context, audio []byte, call CallOptions, opts ...grpc.CallOption) (*models.AnalysisResponse, error) {
	var kv []string
	if call.RequestID != "" {
		kv = append(kv, MetadataRequestID, call.RequestID)
	}
	if call.ContentType != "" {
		kv = append(kv, MetadataContentType, call.ContentType)
	}
	if len(kv) > 0 {
		ctx = metadata.AppendToOutgoingContext(ctx, kv...)
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AnalyzeAudioMethod, wrapperspb.Bytes(audio), out, opts...); err != nil {
		return nil, err
	}
	return decodeResponse(out)
}
