package ports

import "context"

// ObjectStoragePort stores car image binaries under paths shaped like
// cars/{carId}/image-{timestamp}-{index}.{ext}.
type ObjectStoragePort interface {
	// Upload writes the object and returns its durable public URL.
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// Remove deletes a single object. Callers treat failures as warnings,
	// never as blocking errors.
	Remove(ctx context.Context, path string) error
	// Open reads an object back for serving.
	Open(ctx context.Context, path string) ([]byte, string, error)
}
