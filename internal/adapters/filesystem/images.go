// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/routeslip/internal/errorx"
	"github.com/example/routeslip/internal/ports/secondary"
)

// imageExtensions are the file types the inbox and resolver accept.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImageFile reports whether name has a supported image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// CompanionImage returns the image stored beside a text transcript under the
// same name (scan-17.txt and scan-17.png), or "" when there is none.
func CompanionImage(transcript string) string {
	stem := strings.TrimSuffix(transcript, filepath.Ext(transcript))
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".webp", ".bmp", ".gif"} {
		if info, err := os.Stat(stem + ext); err == nil && !info.IsDir() {
			return stem + ext
		}
	}
	return ""
}

// ImageResolver implements secondary.ImageResolver for local image files.
// Relative references resolve against baseDir.
type ImageResolver struct {
	baseDir string
}

// NewImageResolver creates a resolver rooted at baseDir.
func NewImageResolver(baseDir string) *ImageResolver {
	return &ImageResolver{baseDir: baseDir}
}

// Resolve checks that ref names a readable, decodable image.
func (r *ImageResolver) Resolve(ctx context.Context, ref string) (secondary.ImageInfo, error) {
	if strings.TrimSpace(ref) == "" {
		return secondary.ImageInfo{}, fmt.Errorf("%w: empty reference", errorx.ErrInvalidImage)
	}

	path := ref
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return secondary.ImageInfo{}, fmt.Errorf("%w: %s: %v", errorx.ErrInvalidImage, ref, err)
	}
	if info.IsDir() {
		return secondary.ImageInfo{}, fmt.Errorf("%w: %s is a directory", errorx.ErrInvalidImage, ref)
	}

	f, err := os.Open(path)
	if err != nil {
		return secondary.ImageInfo{}, fmt.Errorf("%w: %s: %v", errorx.ErrInvalidImage, ref, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return secondary.ImageInfo{}, fmt.Errorf("%w: %s: %v", errorx.ErrInvalidImage, ref, err)
	}

	return secondary.ImageInfo{
		Ref:    ref,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   info.Size(),
	}, nil
}

// Ensure ImageResolver implements the interface
var _ secondary.ImageResolver = (*ImageResolver)(nil)
