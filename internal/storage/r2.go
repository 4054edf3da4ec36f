package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const maxListKeys = 1000

// s3API is the subset of *s3.Client used by R2Bucket.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// R2Bucket talks to a Cloudflare R2 bucket through its S3-compatible API.
type R2Bucket struct {
	client     s3API
	bucketName string
}

func NewR2Bucket(ctx context.Context, endpoint, accessKeyID, secretAccessKey, bucketName string) (*R2Bucket, error) {
	if endpoint == "" || bucketName == "" {
		return nil, errors.New("R2 endpoint and bucket name are required")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Bucket{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (r *R2Bucket) Put(ctx context.Context, key string, body []byte, opts PutOptions) (*ObjectInfo, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(r.bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		Metadata:      encodeMetadata(opts.CustomMetadata),
	}
	if opts.HTTPMetadata.ContentType != "" {
		input.ContentType = aws.String(opts.HTTPMetadata.ContentType)
	}
	if opts.HTTPMetadata.CacheControl != "" {
		input.CacheControl = aws.String(opts.HTTPMetadata.CacheControl)
	}

	out, err := r.client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to R2: %w", err)
	}

	return &ObjectInfo{
		Key:            key,
		Size:           int64(len(body)),
		ETag:           aws.ToString(out.ETag),
		Uploaded:       time.Now().UTC(),
		HTTPMetadata:   opts.HTTPMetadata,
		CustomMetadata: opts.CustomMetadata,
	}, nil
}

func (r *R2Bucket) Get(ctx context.Context, key string) (*Object, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file from R2: %w", err)
	}

	return &Object{
		ObjectInfo: ObjectInfo{
			Key:      key,
			Size:     aws.ToInt64(out.ContentLength),
			ETag:     aws.ToString(out.ETag),
			Uploaded: aws.ToTime(out.LastModified),
			HTTPMetadata: HTTPMetadata{
				ContentType:  aws.ToString(out.ContentType),
				CacheControl: aws.ToString(out.CacheControl),
			},
			CustomMetadata: canonicalMetadata(out.Metadata),
		},
		Body: out.Body,
	}, nil
}

func (r *R2Bucket) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	out, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to head file in R2: %w", err)
	}

	return &ObjectInfo{
		Key:      key,
		Size:     aws.ToInt64(out.ContentLength),
		ETag:     aws.ToString(out.ETag),
		Uploaded: aws.ToTime(out.LastModified),
		HTTPMetadata: HTTPMetadata{
			ContentType:  aws.ToString(out.ContentType),
			CacheControl: aws.ToString(out.CacheControl),
		},
		CustomMetadata: canonicalMetadata(out.Metadata),
	}, nil
}

func (r *R2Bucket) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from R2: %w", err)
	}

	return nil
}

func (r *R2Bucket) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 || limit > maxListKeys {
		limit = maxListKeys
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(r.bucketName),
		MaxKeys: aws.Int32(int32(limit)),
	}
	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}
	if opts.Cursor != "" {
		input.ContinuationToken = aws.String(opts.Cursor)
	}

	out, err := r.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list files in R2: %w", err)
	}

	result := &ListResult{
		Objects:   make([]ObjectInfo, 0, len(out.Contents)),
		Truncated: aws.ToBool(out.IsTruncated),
	}
	for _, obj := range out.Contents {
		result.Objects = append(result.Objects, ObjectInfo{
			Key:      aws.ToString(obj.Key),
			Size:     aws.ToInt64(obj.Size),
			ETag:     aws.ToString(obj.ETag),
			Uploaded: aws.ToTime(obj.LastModified),
		})
	}
	if result.Truncated {
		result.Cursor = aws.ToString(out.NextContinuationToken)
	}

	return result, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
