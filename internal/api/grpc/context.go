package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

// ActorHeader names the metadata key carrying the operator performing a change.
const ActorHeader = "actor-id"

// ActorFromContext extracts the acting operator from the gRPC metadata.
// Mutating calls require it; it is recorded as created_by.
func ActorFromContext(ctx context.Context) (domain.ActorID, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "metadata is not provided")
	}

	actors := md.Get(ActorHeader)
	if len(actors) == 0 || strings.TrimSpace(actors[0]) == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is not provided in metadata", ActorHeader)
	}
	return domain.ActorID(strings.TrimSpace(actors[0])), nil
}
