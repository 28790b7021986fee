// Package state stores the habit document as a JSON file.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/tOgg1/habitgrid/internal/document"
	"github.com/tOgg1/habitgrid/internal/persist"
)

// ErrCorrupt is returned when the stored file is not a habit document.
var ErrCorrupt = errors.New("state: corrupt document")

// FileGateway reads and writes the document at a single path. Writers on the same
// machine are serialized with an advisory lock on path + ".lock".
type FileGateway struct {
	path     string
	lockPath string

	mu     sync.Mutex
	closed bool
}

var _ persist.Store = (*FileGateway)(nil)

// New returns a gateway for path. The file does not need to exist.
func New(path string) *FileGateway {
	path = strings.TrimSpace(path)
	return &FileGateway{
		path:     path,
		lockPath: path + ".lock",
	}
}

func (g *FileGateway) Path() string { return g.path }

// Load reads the document. A missing or empty file yields an empty document.
// Documents written before the habits list existed are read in their key order and
// rewritten in the current layout.
func (g *FileGateway) Load(ctx context.Context) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return document.Document{}, persist.ErrClosed
	}
	if g.path == "" {
		return document.New(), nil
	}

	out := document.New()
	err := withFileLock(g.lockPath, func() error {
		payload, err := os.ReadFile(g.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if len(bytes.TrimSpace(payload)) == 0 {
			return nil
		}
		var doc document.Document
		if err := json.Unmarshal(payload, &doc); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, g.path, err)
		}
		out = doc
		if document.IsLegacy(payload) {
			if err := writeAtomicJSON(g.path, doc); err != nil {
				return fmt.Errorf("rewrite legacy document %s: %w", g.path, err)
			}
		}
		return nil
	})
	if err != nil {
		return document.Document{}, err
	}
	return out, nil
}

// Commit replaces the file with doc.
func (g *FileGateway) Commit(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return persist.ErrClosed
	}
	if g.path == "" {
		return nil
	}
	return withFileLock(g.lockPath, func() error {
		return writeAtomicJSON(g.path, doc)
	})
}

// Close rejects further use of the gateway.
func (g *FileGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

func withFileLock(lockPath string, fn func() error) error {
	if strings.TrimSpace(lockPath) == "" {
		return fn()
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock %s: %w", lockPath, err)
	}
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}()
	return fn()
}

func writeAtomicJSON(path string, doc document.Document) error {
	compact, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var payload bytes.Buffer
	if err := json.Indent(&payload, compact, "", "  "); err != nil {
		return err
	}
	payload.WriteByte('\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
