package gateway

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/s3gate/errors"
	"github.com/kbukum/s3gate/storage"
)

// toAppError classifies a storage error for the response. path names the
// requested key or prefix in not-found messages.
func toAppError(err error, path string) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case storage.IsNotFound(err):
		return errors.ObjectNotFound(path).WithCause(err)
	case storage.IsCredentials(err):
		return errors.CredentialsUnavailable(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout("storage request").WithCause(err)
	}
	return errors.ProviderError(err)
}
