package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"strings"
	"time"
)

var ErrNotFound = errors.New("object not found")

// Bucket is the handle to a single object-storage bucket.
type Bucket interface {
	Put(ctx context.Context, key string, body []byte, opts PutOptions) (*ObjectInfo, error)
	// Get returns ErrNotFound when no object exists under key.
	Get(ctx context.Context, key string) (*Object, error)
	Head(ctx context.Context, key string) (*ObjectInfo, error)
	// Delete succeeds when the key does not exist.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}

type HTTPMetadata struct {
	ContentType  string `json:"content_type"`
	CacheControl string `json:"cache_control"`
}

type PutOptions struct {
	HTTPMetadata   HTTPMetadata
	CustomMetadata map[string]string
}

type ObjectInfo struct {
	Key            string            `json:"key"`
	Size           int64             `json:"size"`
	ETag           string            `json:"etag,omitempty"`
	Uploaded       time.Time         `json:"uploaded"`
	HTTPMetadata   HTTPMetadata      `json:"http_metadata"`
	CustomMetadata map[string]string `json:"custom_metadata,omitempty"`
}

// Object is an ObjectInfo plus its body. Callers must close Body.
type Object struct {
	ObjectInfo
	Body io.ReadCloser
}

type ListOptions struct {
	Prefix string
	Cursor string
	Limit  int
}

type ListResult struct {
	Objects   []ObjectInfo `json:"objects"`
	Cursor    string       `json:"cursor,omitempty"`
	Truncated bool         `json:"truncated"`
}

// Custom metadata keys written on every upload.
const (
	MetaOriginalName = "originalName"
	MetaUploadedAt   = "uploadedAt"
	MetaSize         = "size"
)

var canonicalMetaKeys = []string{MetaOriginalName, MetaUploadedAt, MetaSize}

// canonicalMetadata restores the casing of known keys and decodes values
// written by encodeMetadata. S3-compatible backends return x-amz-meta-*
// names lowercased.
func canonicalMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		name := k
		for _, c := range canonicalMetaKeys {
			if strings.EqualFold(k, c) {
				name = c
				break
			}
		}
		out[name] = decodeMetadataValue(v)
	}
	return out
}

var metadataDecoder = &mime.WordDecoder{}

// encodeMetadata RFC 2047-encodes values that are not printable US-ASCII,
// which is all x-amz-meta-* headers may carry.
func encodeMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = mime.BEncoding.Encode("utf-8", v)
	}
	return out
}

func decodeMetadataValue(v string) string {
	decoded, err := metadataDecoder.DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}
