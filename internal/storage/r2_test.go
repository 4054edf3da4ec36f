package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *mockS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func (m *mockS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func TestR2Bucket_Put(t *testing.T) {
	client := new(mockS3)
	b := &R2Bucket{client: client, bucketName: "media"}

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return aws.ToString(in.Bucket) == "media" &&
			aws.ToString(in.Key) == "uploads/1_a.png" &&
			string(body) == "data" &&
			aws.ToInt64(in.ContentLength) == 4 &&
			aws.ToString(in.ContentType) == "image/png" &&
			aws.ToString(in.CacheControl) == "public, max-age=31536000" &&
			in.Metadata[MetaOriginalName] == "a.png"
	})).Return(&s3.PutObjectOutput{ETag: aws.String(`"abc"`)}, nil).Once()

	info, err := b.Put(context.Background(), "uploads/1_a.png", []byte("data"), PutOptions{
		HTTPMetadata:   HTTPMetadata{ContentType: "image/png", CacheControl: "public, max-age=31536000"},
		CustomMetadata: map[string]string{MetaOriginalName: "a.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, info.ETag)
	assert.Equal(t, int64(4), info.Size)
	client.AssertExpectations(t)
}

func TestR2Bucket_NonASCIIMetadata(t *testing.T) {
	client := new(mockS3)
	b := &R2Bucket{client: client, bucketName: "media"}

	var sent map[string]string
	client.On("PutObject", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(*s3.PutObjectInput).Metadata
		}).
		Return(&s3.PutObjectOutput{}, nil).Once()

	opts := PutOptions{CustomMetadata: map[string]string{MetaOriginalName: "café.png", MetaSize: "3"}}
	info, err := b.Put(context.Background(), "uploads/1_a.png", []byte("png"), opts)
	require.NoError(t, err)

	assert.Equal(t, "=?utf-8?b?Y2Fmw6kucG5n?=", sent[MetaOriginalName])
	assert.Equal(t, "3", sent[MetaSize])
	assert.Equal(t, "café.png", info.CustomMetadata[MetaOriginalName])
	assert.Equal(t, "café.png", opts.CustomMetadata[MetaOriginalName], "caller map untouched")

	client.On("HeadObject", mock.Anything, mock.Anything).
		Return(&s3.HeadObjectOutput{Metadata: map[string]string{"originalname": sent[MetaOriginalName]}}, nil).Once()

	head, err := b.Head(context.Background(), "uploads/1_a.png")
	require.NoError(t, err)
	assert.Equal(t, "café.png", head.CustomMetadata[MetaOriginalName])
}

func TestR2Bucket_PutError(t *testing.T) {
	client := new(mockS3)
	b := &R2Bucket{client: client, bucketName: "media"}

	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

	_, err := b.Put(context.Background(), "k", []byte("x"), PutOptions{})
	assert.EqualError(t, err, "failed to upload file to R2: boom")
}

func TestR2Bucket_Get(t *testing.T) {
	client := new(mockS3)
	b := &R2Bucket{client: client, bucketName: "media"}
	modified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	client.On("GetObject", mock.Anything, &s3.GetObjectInput{Bucket: aws.String("media"), Key: aws.String("k.png")}).
		Return(&s3.GetObjectOutput{
			Body:          io.NopCloser(bytes.NewReader([]byte("png"))),
			ContentLength: aws.Int64(3),
			ContentType:   aws.String("image/png"),
			CacheControl:  aws.String("public, max-age=31536000"),
			LastModified:  aws.Time(modified),
			Metadata:      map[string]string{"originalname": "a.png", "uploadedat": "2024-05-01T12:00:00.000Z", "size": "3"},
		}, nil).Once()

	obj, err := b.Get(context.Background(), "k.png")
	require.NoError(t, err)
	defer obj.Body.Close()

	assert.Equal(t, int64(3), obj.Size)
	assert.Equal(t, modified, obj.Uploaded)
	assert.Equal(t, "image/png", obj.HTTPMetadata.ContentType)
	assert.Equal(t, map[string]string{
		"originalName": "a.png",
		"uploadedAt":   "2024-05-01T12:00:00.000Z",
		"size":         "3",
	}, obj.CustomMetadata)
}

func TestR2Bucket_GetNotFound(t *testing.T) {
	client := new(mockS3)
	b := &R2Bucket{client: client, bucketName: "media"}

	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{}).Once()
	client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()

	_, err := b.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = b.Head(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestR2Bucket_Delete(t *testing.T) {
	client := new(mockS3)
	b := &R2Bucket{client: client, bucketName: "media"}

	client.On("DeleteObject", mock.Anything, &s3.DeleteObjectInput{Bucket: aws.String("media"), Key: aws.String("k")}).
		Return(&s3.DeleteObjectOutput{}, nil).Once()
	client.On("DeleteObject", mock.Anything, &s3.DeleteObjectInput{Bucket: aws.String("media"), Key: aws.String("denied")}).
		Return(nil, errors.New("AccessDenied")).Once()

	require.NoError(t, b.Delete(context.Background(), "k"))
	assert.EqualError(t, b.Delete(context.Background(), "denied"), "failed to delete file from R2: AccessDenied")
}

func TestR2Bucket_List(t *testing.T) {
	client := new(mockS3)
	b := &R2Bucket{client: client, bucketName: "media"}

	client.On("ListObjectsV2", mock.Anything, &s3.ListObjectsV2Input{
		Bucket:            aws.String("media"),
		MaxKeys:           aws.Int32(2),
		Prefix:            aws.String("avatars/"),
		ContinuationToken: aws.String("tok1"),
	}).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("avatars/1.png"), Size: aws.Int64(10)},
			{Key: aws.String("avatars/2.png"), Size: aws.Int64(20)},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("tok2"),
	}, nil).Once()

	result, err := b.List(context.Background(), ListOptions{Prefix: "avatars/", Cursor: "tok1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, result.Objects, 2)
	assert.Equal(t, "avatars/2.png", result.Objects[1].Key)
	assert.Equal(t, int64(20), result.Objects[1].Size)
	assert.True(t, result.Truncated)
	assert.Equal(t, "tok2", result.Cursor)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))
}

func TestNewR2Bucket_RequiresEndpointAndBucket(t *testing.T) {
	_, err := NewR2Bucket(context.Background(), "", "id", "secret", "media")
	assert.Error(t, err)

	_, err = NewR2Bucket(context.Background(), "https://acct.r2.cloudflarestorage.com", "id", "secret", "")
	assert.Error(t, err)
}
