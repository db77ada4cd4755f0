package handler

import (
	"errors"

	"github.com/dtroode/sessiongate/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Status converts a service error into a gRPC status error without leaking its cause.
func Status(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrInternal):
		return status.Error(codes.Internal, "internal server error")
	case errors.Is(err, model.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials provided")
	case errors.Is(err, model.ErrMissingAuthorization),
		errors.Is(err, model.ErrInvalidAuthorization),
		errors.Is(err, model.ErrTokenInvalid),
		errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrSessionExpired):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, model.ErrBadRequest):
		return status.Error(codes.InvalidArgument, "bad request")
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
