package publish

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/statgrapher/pkg/chart/canvas"
	"github.com/matzehuels/statgrapher/pkg/errors"
)

// =============================================================================
// FileSink
// =============================================================================

// FileSink writes each post as <id>.png plus <id>.txt holding the caption.
type FileSink struct {
	Dir string
}

// NewFileSink creates dir if needed and returns a sink writing into it.
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "publish directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodePublishFailed, err, "create %s", dir)
	}
	return &FileSink{Dir: dir}, nil
}

// Name implements Sink.
func (s *FileSink) Name() string { return "file" }

// Publish implements Sink.
func (s *FileSink) Publish(_ context.Context, p *Post) error {
	base := filepath.Join(s.Dir, p.ID)
	if err := canvas.WriteFileAtomic(base+".png", p.PNG); err != nil {
		return err
	}
	if err := canvas.WriteFileAtomic(base+".txt", []byte(p.Caption+"\n")); err != nil {
		return err
	}
	return nil
}

// Close implements Sink.
func (s *FileSink) Close() error { return nil }

// =============================================================================
// LogSink
// =============================================================================

// LogSink logs posts instead of delivering them.
type LogSink struct {
	Logger *log.Logger
}

// Name implements Sink.
func (s *LogSink) Name() string { return "log" }

// Publish implements Sink.
func (s *LogSink) Publish(_ context.Context, p *Post) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Info("publish (dry run)",
		"id", p.ID,
		"seed", p.Seed,
		"size", len(p.PNG),
		"width", p.Width,
		"height", p.Height,
		"caption", p.Caption)
	return nil
}

// Close implements Sink.
func (s *LogSink) Close() error { return nil }
