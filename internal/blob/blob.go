// Package blob is the boundary to durable object storage.
//
// The pipeline only needs whole-object get and put. Consistency, retries
// and durability are the storage service's concern, not ours.
package blob

import (
	"context"
)

// Store is a whole-object blob store.
type Store interface {
	// Get returns the object's bytes, or errors.ErrObjectNotFound if no
	// object exists at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the object at key. Implementations targeting real
	// storage must request server-side encryption at rest.
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
