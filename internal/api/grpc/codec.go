package grpcapi

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"distress-audio-triage-service/internal/models"
)

// encodeResponse converts a response into a Struct using its JSON field names.
func encodeResponse(resp models.AnalysisResponse) (*structpb.Struct, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("convert response: %w", err)
	}
	return out, nil
}

// decodeResponse is the inverse of encodeResponse.
func decodeResponse(in *structpb.Struct) (*models.AnalysisResponse, error) {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("convert response: %w", err)
	}
	var resp models.AnalysisResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}
