// Package loader reads the document corpus an index is built from.
package loader

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"

	"ragsearch/internal/domain"
)

// DefaultPatterns are the globs matched when none are configured.
var DefaultPatterns = []string{"**/*.txt", "**/*.md"}

// DirectoryLoader loads every file under a directory that matches one of its
// doublestar patterns.
type DirectoryLoader struct {
	patterns []string
}

// NewDirectoryLoader creates a loader for the given patterns, falling back to
// DefaultPatterns when none are supplied.
func NewDirectoryLoader(patterns ...string) *DirectoryLoader {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	return &DirectoryLoader{patterns: patterns}
}

// LoadAll returns the non-empty matching documents in lexical path order.
func (l *DirectoryLoader) LoadAll(ctx context.Context, dir string) ([]domain.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus directory %s: %w", domain.ErrIndexUnavailable, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: corpus path %s is not a directory", domain.ErrIndexUnavailable, dir)
	}

	fsys := os.DirFS(dir)
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range l.patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: bad pattern %q", domain.ErrInvalidInput, pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: glob %q in %s: %w", domain.ErrIndexUnavailable, pattern, dir, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)

	var docs []domain.Document
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrIndexUnavailable, rel, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			log.Debug().Str("path", rel).Msg("skipping empty document")
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(rel))
		docs = append(docs, domain.Document{ID: hashString(path), Path: path, Content: string(data)})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents matching %s in %s",
			domain.ErrIndexUnavailable, strings.Join(l.patterns, ", "), dir)
	}
	log.Debug().Int("documents", len(docs)).Str("dir", dir).Msg("loaded corpus")
	return docs, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
