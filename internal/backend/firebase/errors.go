package firebase

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"firelist/internal/service"
)

// wrapError translates Firestore errors into service sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrTimeout
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", service.ErrNotFound, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", service.ErrPermissionDenied, st.Message())
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", service.ErrUnauthenticated, st.Message())
	case codes.DeadlineExceeded:
		return service.ErrTimeout
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", service.ErrUnavailable, st.Message())
	case codes.Canceled:
		return context.Canceled
	}
	return err
}

// wrapAuthError keeps the provider's message and attaches a short code.
func wrapAuthError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrTimeout
	}

	code := "internal-error"
	switch {
	case auth.IsEmailAlreadyExists(err):
		code = "email-already-exists"
	case errorutils.IsInvalidArgument(err):
		code = "invalid-argument"
	case errorutils.IsPermissionDenied(err):
		code = "permission-denied"
	case errorutils.IsUnauthenticated(err):
		code = "unauthenticated"
	case errorutils.IsUnavailable(err):
		code = "unavailable"
	}
	return &service.ProviderError{Code: code, Message: err.Error(), Err: err}
}
