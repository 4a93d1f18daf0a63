package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/s3gate/logger"
	"github.com/kbukum/s3gate/storage"
)

var lastModified = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

type fakeAPI struct {
	keys      []string
	listErr   error
	headErr   error
	getErr    error
	listCalls []*awss3.ListObjectsV2Input
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	f.listCalls = append(f.listCalls, in)
	if f.listErr != nil {
		return nil, f.listErr
	}
	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	var matching []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			matching = append(matching, k)
		}
	}
	end := min(start+int(aws.ToInt32(in.MaxKeys)), len(matching))
	out := &awss3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(matching))}
	for i, k := range matching[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(100 * (start + i + 1))),
			LastModified: aws.Time(lastModified),
		})
	}
	if end < len(matching) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeAPI) HeadObject(_ context.Context, in *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &awss3.HeadObjectOutput{
		ContentLength: aws.Int64(42),
		LastModified:  aws.Time(lastModified),
		ContentType:   aws.String("application/json"),
		ETag:          aws.String(`"etag"`),
	}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(`{"key":"` + aws.ToString(in.Key) + `"}`))}, nil
}

type fakePresigner struct {
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var opts awss3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{
		URL:    fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Expires=%d", aws.ToString(in.Bucket), aws.ToString(in.Key), int(opts.Expires.Seconds())),
		Method: http.MethodGet,
	}, nil
}

var staticCreds = credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")

var noCreds = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
	return aws.Credentials{}, errors.New("no EC2 IMDS role found")
})

func newTestStorage(api *fakeAPI, pageSize int) (*Storage, *fakePresigner) {
	p := &fakePresigner{}
	return NewWithClient(api, p, staticCreds, "bucket", pageSize), p
}

func TestListPages(t *testing.T) {
	api := &fakeAPI{keys: []string{"HDX/a", "HDX/b", "HDX/c", "OTHER/z"}}
	s, _ := newTestStorage(api, 2)

	p := s.List(context.Background(), "HDX/")
	first, err := p.NextPage(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "HDX/a", first[0].Key)
	assert.Equal(t, int64(100), first[0].Size)
	assert.Equal(t, lastModified, first[0].LastModified)
	require.True(t, p.HasMorePages())

	second, err := p.NextPage(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "HDX/c", second[0].Key)
	assert.False(t, p.HasMorePages())

	require.Len(t, api.listCalls, 2)
	assert.Equal(t, int32(2), aws.ToInt32(api.listCalls[0].MaxKeys))
	assert.Equal(t, "2", aws.ToString(api.listCalls[1].ContinuationToken))
}

func TestListEmpty(t *testing.T) {
	s, _ := newTestStorage(&fakeAPI{}, 10)
	all, err := storage.Collect(context.Background(), s.List(context.Background(), "none/"))
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListWithoutCredentials(t *testing.T) {
	api := &fakeAPI{keys: []string{"HDX/a"}}
	s := NewWithClient(api, &fakePresigner{}, noCreds, "bucket", 10)

	_, err := s.List(context.Background(), "HDX/").NextPage(context.Background())
	require.Error(t, err)
	assert.True(t, storage.IsCredentials(err))
	assert.Empty(t, api.listCalls, "no request without credentials")
}

func TestListProviderError(t *testing.T) {
	api := &fakeAPI{listErr: &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}}
	s, _ := newTestStorage(api, 10)

	_, err := s.List(context.Background(), "HDX/").NextPage(context.Background())
	var se *storage.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "AccessDenied", se.Code)
	assert.False(t, storage.IsNotFound(err))
	assert.False(t, storage.IsCredentials(err))
}

func TestHead(t *testing.T) {
	s, _ := newTestStorage(&fakeAPI{}, 10)
	info, err := s.Head(context.Background(), "HDX/meta.json")
	require.NoError(t, err)
	assert.Equal(t, "HDX/meta.json", info.Key)
	assert.Equal(t, int64(42), info.Size)
	assert.Equal(t, lastModified, info.LastModified)
	assert.Equal(t, "application/json", info.ContentType)
}

func TestHeadNotFound(t *testing.T) {
	s, _ := newTestStorage(&fakeAPI{headErr: &types.NotFound{}}, 10)
	_, err := s.Head(context.Background(), "missing")
	assert.True(t, storage.IsNotFound(err))
}

func TestOpen(t *testing.T) {
	s, _ := newTestStorage(&fakeAPI{}, 10)
	rc, err := s.Open(context.Background(), "a.json")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"a.json"}`, string(b))

	s, _ = newTestStorage(&fakeAPI{getErr: &types.NoSuchKey{}}, 10)
	_, err = s.Open(context.Background(), "a.json")
	assert.True(t, storage.IsNotFound(err))
}

func TestPresign(t *testing.T) {
	s, p := newTestStorage(&fakeAPI{}, 10)
	u, err := s.Presign(context.Background(), "HDX/data.csv", 3024000*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/HDX/data.csv?X-Amz-Expires=3024000", u)
	assert.Equal(t, 3024000*time.Second, p.expires)

	s = NewWithClient(&fakeAPI{}, p, noCreds, "bucket", 10)
	_, err = s.Presign(context.Background(), "HDX/data.csv", time.Hour)
	assert.True(t, storage.IsCredentials(err))
}

func TestClassify(t *testing.T) {
	notFoundResp := &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
			Err:      errors.New("not found"),
		},
	}
	tests := []struct {
		name     string
		err      error
		notFound bool
		creds    bool
		code     string
	}{
		{"no such key", &types.NoSuchKey{}, true, false, "NoSuchKey"},
		{"not found", &types.NotFound{}, true, false, "NotFound"},
		{"no such bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, true, false, "NoSuchBucket"},
		{"bad key id", &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}, false, true, "InvalidAccessKeyId"},
		{"expired", &smithy.GenericAPIError{Code: "ExpiredToken"}, false, true, "ExpiredToken"},
		{"throttled", &smithy.GenericAPIError{Code: "SlowDown"}, false, false, "SlowDown"},
		{"bare 404", notFoundResp, true, false, "404"},
		{"other", errors.New("dial tcp: timeout"), false, false, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := classify("head", "bucket", "k", fmt.Errorf("operation error S3: HeadObject: %w", tc.err))
			assert.Equal(t, tc.notFound, storage.IsNotFound(err))
			assert.Equal(t, tc.creds, storage.IsCredentials(err))
			var se *storage.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.code, se.Code)
		})
	}
	assert.NoError(t, classify("head", "b", "k", nil))
}

func TestConfig(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.NoError(t, cfg.Validate())

	cfg.AccessKey = "AKID"
	assert.Error(t, cfg.Validate())
}

func TestFactoryRejectsWrongConfigType(t *testing.T) {
	_, err := storage.New(storage.Config{Provider: storage.ProviderS3, Bucket: "b"}, "not a config", logger.Nop())
	require.Error(t, err)
}
