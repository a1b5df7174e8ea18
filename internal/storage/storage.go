// Package storage holds the blob stores for templates and generated documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Logical folders inside the bucket.
const (
	TemplatesPrefix = "templates"
	ResultsPrefix   = "results"
)

var (
	// ErrNotFound is returned when no object exists under the key.
	ErrNotFound = errors.New("object not found")
	// ErrTooLarge is returned by ReadLimit when an object exceeds the limit.
	ErrTooLarge = errors.New("object too large")
)

// PutObjectOptions describe an upload. Size is the exact byte count, or -1 when unknown.
// FileName, when set, is the download name offered to browsers.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	FileName    string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Deleter is the subset of Storage needed to remove a generated document.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// TemplateKey is the object key of the template for a document type.
func TemplateKey(documentType string) string {
	return TemplatesPrefix + "/" + documentType + ".docx"
}

// ResultKey is the object key of a generated document.
func ResultKey(fileName string) string {
	return ResultsPrefix + "/" + fileName
}

// ReadAll fetches a whole object into memory.
func ReadAll(ctx context.Context, s Storage, key string) ([]byte, error) {
	rc, _, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ReadLimit is ReadAll for objects of at most limit bytes.
func ReadLimit(ctx context.Context, s Storage, key string, limit int64) ([]byte, error) {
	rc, _, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, key, limit)
	}
	return buf, nil
}
