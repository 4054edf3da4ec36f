// Package gateway uploads, fetches and deletes objects in a single bucket and
// hands back the public URL under which an uploaded object is served.
//
// Put and Delete never return a Go error: every failure is reported through
// the Success/Error fields of the result. Get reports "not found" and backend
// failures the same way, with a nil object.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"godsendjoseph.dev/r2-gateway/internal/storage"
)

const (
	DefaultFolder = "uploads"
	CacheControl  = "public, max-age=31536000"

	// uploadedAt layout, millisecond precision in UTC
	isoMillis = "2006-01-02T15:04:05.000Z"
)

// ConfigurationError means a dependency the gateway needs was not provided.
// It is detected before any I/O.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

var (
	ErrBucketNotBound   = &ConfigurationError{msg: "Server configuration error: R2 bucket is not bound."}
	ErrPublicURLNotSet  = &ConfigurationError{msg: "Server configuration error: R2 public URL is not set."}
	errUploadFailedText = "Upload failed"
	errDeleteFailedText = "Delete from R2 failed"
)

type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Key     string `json:"key,omitempty"`
	Error   string `json:"error,omitempty"`

	// Err is the underlying failure, for callers that need errors.As.
	Err error `json:"-"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Err error `json:"-"`
}

// File is an upload as received from a client.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type Config struct {
	// PublicURL is the base under which bucket objects are publicly served.
	// A missing scheme defaults to https.
	PublicURL string
}

type Gateway struct {
	bucket    storage.Bucket
	publicURL string
	logger    *zap.SugaredLogger

	now   func() time.Time
	token func() (string, error)
}

// New returns a gateway over bucket. bucket may be nil, in which case every
// operation reports ErrBucketNotBound.
func New(bucket storage.Bucket, cfg Config, logger *zap.SugaredLogger) *Gateway {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Gateway{
		bucket:    bucket,
		publicURL: cfg.PublicURL,
		logger:    logger,
		now:       time.Now,
		token:     randomToken,
	}
}

func (g *Gateway) Put(ctx context.Context, file File, folder string) UploadResult {
	if g.bucket == nil {
		g.logger.Errorw("R2 upload error: R2 bucket binding not found")
		return UploadResult{Success: false, Error: ErrBucketNotBound.Error(), Err: ErrBucketNotBound}
	}
	if g.publicURL == "" {
		g.logger.Errorw("R2 upload error: public URL is not set")
		return UploadResult{Success: false, Error: ErrPublicURLNotSet.Error(), Err: ErrPublicURLNotSet}
	}

	now := g.now()
	token, err := g.token()
	if err != nil {
		return g.uploadFailed(fmt.Errorf("generate key: %w", err))
	}
	key := BuildKey(folder, file.Name, now, token)

	var data []byte
	if file.Body != nil {
		data, err = io.ReadAll(file.Body)
		if err != nil {
			return g.uploadFailed(fmt.Errorf("read upload: %w", err))
		}
	}

	opts := storage.PutOptions{
		HTTPMetadata: storage.HTTPMetadata{
			ContentType:  contentType(file, data),
			CacheControl: CacheControl,
		},
		CustomMetadata: map[string]string{
			storage.MetaOriginalName: file.Name,
			storage.MetaUploadedAt:   now.UTC().Format(isoMillis),
			storage.MetaSize:         strconv.Itoa(len(data)),
		},
	}

	if _, err := g.bucket.Put(ctx, key, data, opts); err != nil {
		return g.uploadFailed(err)
	}

	g.logger.Infow("uploaded object", "key", key, "size", len(data), "content_type", opts.HTTPMetadata.ContentType)

	return UploadResult{
		Success: true,
		URL:     JoinURL(g.publicURL, key),
		Key:     key,
	}
}

// Get returns nil when the object does not exist or cannot be fetched.
func (g *Gateway) Get(ctx context.Context, key string) *storage.Object {
	if g.bucket == nil {
		g.logger.Errorw("Error getting data from R2", "key", key, "error", ErrBucketNotBound)
		return nil
	}

	obj, err := g.bucket.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			g.logger.Errorw("Error getting data from R2", "key", key, "error", err)
		}
		return nil
	}
	return obj
}

// Head is Get without the body.
func (g *Gateway) Head(ctx context.Context, key string) *storage.ObjectInfo {
	if g.bucket == nil {
		g.logger.Errorw("Error getting metadata from R2", "key", key, "error", ErrBucketNotBound)
		return nil
	}

	info, err := g.bucket.Head(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			g.logger.Errorw("Error getting metadata from R2", "key", key, "error", err)
		}
		return nil
	}
	return info
}

func (g *Gateway) Delete(ctx context.Context, key string) DeleteResult {
	if g.bucket == nil {
		g.logger.Errorw("R2 delete error: R2 bucket binding not found")
		return DeleteResult{Success: false, Error: ErrBucketNotBound.Error(), Err: ErrBucketNotBound}
	}

	if err := g.bucket.Delete(ctx, key); err != nil {
		g.logger.Errorw("R2 delete error", "key", key, "error", err)
		return DeleteResult{Success: false, Error: errorMessage(err, errDeleteFailedText), Err: err}
	}

	g.logger.Infow("Successfully deleted R2 object", "key", key)
	return DeleteResult{Success: true}
}

type ListOptions = storage.ListOptions

func (g *Gateway) List(ctx context.Context, opts ListOptions) (*storage.ListResult, error) {
	if g.bucket == nil {
		return nil, ErrBucketNotBound
	}

	result, err := g.bucket.List(ctx, opts)
	if err != nil {
		g.logger.Errorw("R2 list error", "prefix", opts.Prefix, "error", err)
		return nil, err
	}
	return result, nil
}

// PublicURL is the URL an object stored under key is served from.
func (g *Gateway) PublicURL(key string) (string, error) {
	if g.publicURL == "" {
		return "", ErrPublicURLNotSet
	}
	return JoinURL(g.publicURL, key), nil
}

func (g *Gateway) uploadFailed(err error) UploadResult {
	g.logger.Errorw("R2 upload error", "error", err)
	return UploadResult{Success: false, Error: errorMessage(err, errUploadFailedText), Err: err}
}

func errorMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

func contentType(file File, data []byte) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	if ct := contentTypeByName(file.Name); ct != "" {
		return ct
	}
	return sniffContentType(data)
}
