package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/example/routeslip/internal/errorx"
	"github.com/example/routeslip/internal/ports/secondary"
)

// ProcessedDir is the inbox subdirectory consumed frames are moved into.
const ProcessedDir = "processed"

// InboxFrameSource implements secondary.FrameSource over a directory that a
// camera or scanner drops invoice photos into. Frames are served in name order.
type InboxFrameSource struct {
	dir string
}

// NewInboxFrameSource creates a frame source for dir, creating it if needed.
func NewInboxFrameSource(dir string) (*InboxFrameSource, error) {
	if err := os.MkdirAll(filepath.Join(dir, ProcessedDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create inbox: %w", err)
	}
	return &InboxFrameSource{dir: dir}, nil
}

// NextFrame returns the path of the first image waiting in the inbox.
func (s *InboxFrameSource) NextFrame(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read inbox: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "", errorx.ErrNoFrame
	}

	sort.Strings(names)
	return filepath.Join(s.dir, names[0]), nil
}

// MarkProcessed moves ref into the processed directory and returns its new path.
// An existing file of the same name is replaced.
func (s *InboxFrameSource) MarkProcessed(ctx context.Context, ref string) (string, error) {
	target := filepath.Join(s.dir, ProcessedDir, filepath.Base(ref))
	if err := os.Rename(ref, target); err != nil {
		return "", fmt.Errorf("failed to archive frame: %w", err)
	}
	return target, nil
}

// Ensure InboxFrameSource implements the interface
var _ secondary.FrameSource = (*InboxFrameSource)(nil)
