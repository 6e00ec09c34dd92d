// Package storage provides the blob store the file catalog points into:
// a put/get/delete contract over a key-addressed object namespace, backed
// by any S3-compatible service.
package storage

import (
	"context"
	"io"
)

// PutResult describes a stored blob: the key it was stored under and the
// public URL the store serves it from.
type PutResult struct {
	Key      string
	Location string
}

// Object is a downloaded blob.
type Object struct {
	Data        []byte
	ContentType string
	Length      int64
}

// BlobStore is the object-store capability the file service depends on.
// Objects are created with public-read visibility; access control is
// enforced entirely by the catalog layer.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*PutResult, error)
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}
