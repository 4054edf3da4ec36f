package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const metaDir = ".meta"

// LocalBucket keeps objects on disk. Used in development when R2 is not enabled.
// Metadata lives next to the data under <root>/.meta/<key>.json.
type LocalBucket struct {
	root string
}

func NewLocalBucket(root string) (*LocalBucket, error) {
	if err := os.MkdirAll(filepath.Join(root, metaDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create local bucket dir: %w", err)
	}
	return &LocalBucket{root: root}, nil
}

func (b *LocalBucket) Put(ctx context.Context, key string, body []byte, opts PutOptions) (*ObjectInfo, error) {
	dataPath, metaPath, err := b.paths(key)
	if err != nil {
		return nil, err
	}

	info := &ObjectInfo{
		Key:            key,
		Size:           int64(len(body)),
		Uploaded:       time.Now().UTC(),
		HTTPMetadata:   opts.HTTPMetadata,
		CustomMetadata: opts.CustomMetadata,
	}
	meta, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}

	// the metadata file is what makes an object visible, so it goes last
	if err := writeFileAtomic(dataPath, body); err != nil {
		return nil, fmt.Errorf("failed to write local file: %w", err)
	}
	if err := writeFileAtomic(metaPath, meta); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	return info, nil
}

func (b *LocalBucket) Get(ctx context.Context, key string) (*Object, error) {
	info, err := b.Head(ctx, key)
	if err != nil {
		return nil, err
	}

	dataPath, _, _ := b.paths(key)
	f, err := os.Open(dataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open local file: %w", err)
	}

	return &Object{ObjectInfo: *info, Body: f}, nil
}

func (b *LocalBucket) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	_, metaPath, err := b.paths(key)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info ObjectInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("corrupt metadata for %s: %w", key, err)
	}
	return &info, nil
}

func (b *LocalBucket) Delete(ctx context.Context, key string) error {
	dataPath, metaPath, err := b.paths(key)
	if err != nil {
		return err
	}

	for _, p := range []string{metaPath, dataPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete local file: %w", err)
		}
	}
	return nil
}

func (b *LocalBucket) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 || limit > maxListKeys {
		limit = maxListKeys
	}

	metaRoot := filepath.Join(b.root, metaDir)
	var keys []string
	err := filepath.WalkDir(metaRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		rel, err := filepath.Rel(metaRoot, path)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(filepath.ToSlash(rel), ".json")
		if strings.HasPrefix(key, opts.Prefix) && key > opts.Cursor {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list local files: %w", err)
	}
	sort.Strings(keys)

	result := &ListResult{Objects: make([]ObjectInfo, 0, min(len(keys), limit))}
	if len(keys) > limit {
		keys = keys[:limit]
		result.Truncated = true
		result.Cursor = keys[len(keys)-1]
	}
	for _, key := range keys {
		info, err := b.Head(ctx, key)
		if err != nil {
			return nil, err
		}
		result.Objects = append(result.Objects, *info)
	}

	return result, nil
}

func (b *LocalBucket) paths(key string) (string, string, error) {
	clean := filepath.Clean("/" + key)
	if clean != "/"+key || clean == "/" || strings.HasPrefix(filepath.Base(clean), ".") || strings.HasPrefix(clean, "/"+metaDir+"/") {
		return "", "", fmt.Errorf("invalid object key %q", key)
	}
	rel := strings.TrimPrefix(clean, "/")
	return filepath.Join(b.root, rel), filepath.Join(b.root, metaDir, rel+".json"), nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
