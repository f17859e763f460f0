package documents

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// MaxFileSize is the default per-file size cap (10MB). Larger files are
// skipped with a warning rather than failing the whole load.
const MaxFileSize = 10 * 1024 * 1024

// Loader walks a documents folder and produces a Corpus.
type Loader struct {
	root        string
	maxFileSize int64
	logger      zerolog.Logger
}

// LoaderConfig holds configuration for a Loader.
type LoaderConfig struct {
	// Root is the documents folder. Required.
	Root string

	// MaxFileSize overrides the per-file size cap. Zero means MaxFileSize.
	MaxFileSize int64

	Logger zerolog.Logger
}

// NewLoader creates a loader for the given folder.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = MaxFileSize
	}
	return &Loader{
		root:        cfg.Root,
		maxFileSize: cfg.MaxFileSize,
		logger:      cfg.Logger,
	}
}

// Load walks the folder recursively and reads every regular file into the
// corpus. Dot-files and dot-directories are skipped. Oversized or unreadable
// files are logged and skipped; only a missing or unwalkable root is fatal.
func (l *Loader) Load() (Corpus, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open documents folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("documents path %s is not a directory", l.root)
	}

	var corpus Corpus

	err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if strings.HasPrefix(d.Name(), ".") && path != l.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		rel = filepath.ToSlash(rel)

		fi, err := d.Info()
		if err != nil {
			l.logger.Warn().Err(err).Str("file", rel).Msg("Failed to stat document, skipping")
			return nil
		}
		if fi.Size() > l.maxFileSize {
			l.logger.Warn().
				Str("file", rel).
				Int64("size", fi.Size()).
				Int64("max", l.maxFileSize).
				Msg("Document exceeds size cap, skipping")
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn().Err(err).Str("file", rel).Msg("Failed to read document, skipping")
			return nil
		}

		corpus = append(corpus, Document{
			RelPath: rel,
			Content: string(data),
			Size:    fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk documents folder: %w", err)
	}

	sort.Slice(corpus, func(i, j int) bool {
		return corpus[i].RelPath < corpus[j].RelPath
	})

	l.logger.Info().
		Int("files", len(corpus)).
		Int64("bytes", corpus.TotalSize()).
		Str("root", l.root).
		Msg("Loaded documents corpus")

	return corpus, nil
}
