package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joelcalolo/MoFleet-sub000/internal/api/payload"
)

// decode reads a request Struct into one of the payload documents.
func decode(in *structpb.Struct, dst any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	return payload.Decode(data, dst)
}

// encode turns a response document into a Struct.
func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return out, nil
}
