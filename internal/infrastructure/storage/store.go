package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Collection persists one entity kind as a single JSON document. The
// whole collection is loaded eagerly at startup and rewritten wholesale
// on every mutation. Persistence failures are degraded, not fatal: a
// missing or unreadable file loads as an empty collection, and save
// errors are logged and swallowed.
type Collection[T any] struct {
	path   string
	logger *zap.Logger
}

func NewCollection[T any](dir, name string, logger *zap.Logger) *Collection[T] {
	return &Collection[T]{
		path:   filepath.Join(dir, name),
		logger: logger,
	}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string {
	return c.path
}

// Load reads the entire collection. A missing file is a normal first
// run; anything else unreadable is logged and treated as empty.
func (c *Collection[T]) Load() []T {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("failed to read collection, starting empty",
				zap.String("path", c.path),
				zap.Error(err),
			)
		}
		return nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("failed to decode collection, starting empty",
			zap.String("path", c.path),
			zap.Error(err),
		)
		return nil
	}
	return items
}

// Save rewrites the whole collection. Best effort: failures are logged
// and the in-memory state stays authoritative.
func (c *Collection[T]) Save(items []T) {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		c.logger.Error("failed to encode collection",
			zap.String("path", c.path),
			zap.Error(err),
		)
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		c.logger.Error("failed to create data directory",
			zap.String("path", c.path),
			zap.Error(err),
		)
		return
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		c.logger.Error("failed to write collection",
			zap.String("path", c.path),
			zap.Error(err),
		)
	}
}
