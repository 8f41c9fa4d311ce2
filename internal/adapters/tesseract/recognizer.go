// Package tesseract implements text recognition with the Tesseract engine.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/example/routeslip/internal/ports/secondary"
)

// Recognizer implements secondary.TextRecognizer with gosseract.
// A fresh client is used per image; clients are not safe for concurrent use.
type Recognizer struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewRecognizer creates a Recognizer for the given tesseract languages.
func NewRecognizer(languages []string) *Recognizer {
	return &Recognizer{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize runs OCR on the image file at imageRef.
func (r *Recognizer) Recognize(ctx context.Context, imageRef string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := r.clientFactory()
	defer c.Close()

	if len(r.languages) > 0 {
		if err := c.SetLanguage(r.languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetImage(imageRef); err != nil {
		return "", fmt.Errorf("set image %s: %w", imageRef, err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", imageRef, err)
	}
	return strings.TrimSpace(text), nil
}

// Ensure Recognizer implements the interface
var _ secondary.TextRecognizer = (*Recognizer)(nil)
