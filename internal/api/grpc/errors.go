package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
)

// toStatus maps domain error kinds onto gRPC codes. Persistence failures are
// logged in full and reported with a generic message.
func toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrPrecondition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return conflictStatus(err)
	default:
		logger.ErrorContext(ctx, "Internal error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// conflictStatus attaches the clashing reservation, when known, as a Struct detail.
func conflictStatus(err error) error {
	st := status.New(codes.Aborted, err.Error())
	var ce *domain.ConflictError
	if !errors.As(err, &ce) || ce.Conflicting == nil {
		return st.Err()
	}
	detail, derr := structpb.NewStruct(map[string]any{
		"reservation_id": ce.Conflicting.ID,
		"customer_id":    ce.Conflicting.CustomerID,
		"start_date":     ce.Conflicting.StartDate.String(),
		"end_date":       ce.Conflicting.EndDate.String(),
		"status":         string(ce.Conflicting.Status),
	})
	if derr != nil {
		return st.Err()
	}
	withDetail, derr := st.WithDetails(detail)
	if derr != nil {
		return st.Err()
	}
	return withDetail.Err()
}
