package s3

import (
	"errors"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/kbukum/s3gate/storage"
)

var credentialCodes = map[string]bool{
	"InvalidAccessKeyId":         true,
	"SignatureDoesNotMatch":      true,
	"ExpiredToken":               true,
	"InvalidToken":               true,
	"TokenRefreshRequired":       true,
	"MissingAuthenticationToken": true,
}

var notFoundCodes = map[string]bool{
	"NotFound":     true,
	"NoSuchKey":    true,
	"NoSuchBucket": true,
	"404":          true,
}

// classify maps an SDK error onto the storage sentinels.
func classify(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}

	var (
		noSuchKey *types.NoSuchKey
		notFound  *types.NotFound
	)
	if errors.As(err, &noSuchKey) {
		return storage.NotFoundError(op, bucket, key, "NoSuchKey", err)
	}
	if errors.As(err, &notFound) {
		return storage.NotFoundError(op, bucket, key, "NotFound", err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case notFoundCodes[code]:
			return storage.NotFoundError(op, bucket, key, code, err)
		case credentialCodes[code]:
			return storage.CredentialsError(op, bucket, key, code, err)
		}
		return storage.NewError(op, bucket, key, code, err)
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return storage.NotFoundError(op, bucket, key, "404", err)
	}
	return storage.NewError(op, bucket, key, "", err)
}
