// Package corpus turns a directory of plain-text files into an ordered list
// of chunks with provenance.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docqa/internal/domain"
)

// DefaultExtensions lists the file extensions indexed when none are configured.
var DefaultExtensions = []string{".txt"}

// Loader reads every eligible file of a directory and chunks it.
type Loader struct {
	chunker    domain.Chunker
	extensions []string
	log        *slog.Logger
}

// NewLoader creates a loader. Extensions are matched case-insensitively.
func NewLoader(chunker domain.Chunker, extensions []string, log *slog.Logger) *Loader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loader{chunker: chunker, extensions: extensions, log: log}
}

// Load returns the chunks of all eligible files in dir, in lexicographic
// file order and left-to-right within each file. A missing or unreadable
// directory yields an empty corpus, not an error.
func (l *Loader) Load(dir string) ([]domain.Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("corpus directory not found; starting with empty corpus", "dir", dir)
		} else {
			l.log.Warn("corpus directory unreadable; starting with empty corpus", "dir", dir, "error", err)
		}
		return nil, nil
	}

	var chunks []domain.Chunk
	files := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !l.eligible(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := readText(path)
		if err != nil {
			l.log.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		docChunks, err := l.chunker.Chunk(domain.Document{Name: entry.Name(), Content: content})
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", entry.Name(), err)
		}
		chunks = append(chunks, docChunks...)
		files++
	}
	l.log.Info("corpus loaded", "dir", dir, "files", files, "chunks", len(chunks))
	return chunks, nil
}

func (l *Loader) eligible(name string) bool {
	ext := filepath.Ext(name)
	for _, want := range l.extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// readText reads a UTF-8 file, dropping undecodable bytes instead of failing.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
