package ports

import "context"

// VisionPort is the generative-model boundary: an inline image plus an
// instruction in, free text out. All structural validation of the output
// happens on our side.
type VisionPort interface {
	GenerateFromImage(ctx context.Context, image []byte, mimeType string, prompt string) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}
