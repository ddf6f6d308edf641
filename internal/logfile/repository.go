// Package logfile reads the finite set of log files that a parse run works on.
package logfile

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/atikulmunna/skein/internal/model"
)

// DefaultPattern selects plain .log files at the top of the directory.
const DefaultPattern = "*.log"

// maxParallelReads bounds concurrent file reads.
const maxParallelReads = 8

// Repository lists and reads log files under Dir that match Pattern.
// Pattern is a doublestar glob relative to Dir, so "**/*.log" recurses.
type Repository struct {
	Dir     string
	Pattern string
}

// New creates a Repository. An empty pattern selects DefaultPattern.
func New(dir, pattern string) *Repository {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Repository{Dir: dir, Pattern: pattern}
}

// DirectoryExists reports whether Dir exists and is a directory.
func (r *Repository) DirectoryExists() bool {
	info, err := os.Stat(r.Dir)
	return err == nil && info.IsDir()
}

// FileNames returns matching file names, relative to Dir with forward slashes, sorted.
func (r *Repository) FileNames() ([]string, error) {
	pattern := r.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	names, err := doublestar.Glob(os.DirFS(r.Dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", pattern, r.Dir, err)
	}
	sort.Strings(names)
	return names, nil
}

// Match reports whether a slash path relative to Dir is selected by Pattern.
func (r *Repository) Match(name string) bool {
	pattern := r.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// ReadLogFiles reads every matching file. The result is ordered by name.
// Files are read in parallel; the first read error cancels the rest.
func (r *Repository) ReadLogFiles(ctx context.Context) ([]model.SourceFile, error) {
	names, err := r.FileNames()
	if err != nil {
		return nil, err
	}

	files := make([]model.SourceFile, len(names))
	fsys := os.DirFS(r.Dir)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("read %s: %w", path.Join(r.Dir, name), err)
			}
			files[i] = model.SourceFile{Name: name, Content: string(raw)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Str("dir", r.Dir).Int("files", len(files)).Msg("read log files")
	return files, nil
}
