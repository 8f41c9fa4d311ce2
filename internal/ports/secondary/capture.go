package secondary

import "context"

// TextRecognizer turns a captured image into raw text.
type TextRecognizer interface {
	// Recognize runs text recognition on the image at imageRef.
	Recognize(ctx context.Context, imageRef string) (string, error)
}

// FrameSource yields references to newly captured invoice images.
type FrameSource interface {
	// NextFrame returns the next unprocessed image reference.
	// It returns errorx.ErrNoFrame when nothing is waiting.
	NextFrame(ctx context.Context) (string, error)

	// MarkProcessed records that ref has been consumed and returns the
	// reference the image can be found at afterwards.
	MarkProcessed(ctx context.Context, ref string) (string, error)
}

// ImageResolver checks that an image reference points at a readable image.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (ImageInfo, error)
}

// ImageInfo describes a resolved image.
type ImageInfo struct {
	Ref    string
	Format string // e.g. "png", "jpeg", "tiff"
	Width  int
	Height int
	Size   int64
}
