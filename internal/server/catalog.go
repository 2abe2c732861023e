package server

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/zipx/internal/shared"
)

const copyBufferSize = 1 << 20

// Catalog resolves archive ids to readable archives.
type Catalog interface {
	Open(archive string) (Archive, error)
}

// Archive is an open archive. Entries are listed in archive order.
type Archive interface {
	Entries() []string
	Has(entry string) bool
	Extract(entry, destination string) error
	Close() error
}

// ZipCatalog serves zip files below Root. Archive ids are paths relative to Root.
type ZipCatalog struct {
	Root string
}

// Open opens the zip file named by archive.
func (c ZipCatalog) Open(archive string) (Archive, error) {
	path, err := Within(c.Root, archive)
	if err != nil {
		return nil, err
	}

	r, err := zip.OpenReader(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", shared.ErrArchiveNotFound, archive)
	case err != nil:
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, archive, err)
	}

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}
	return &zipArchive{reader: r, files: files}, nil
}

type zipArchive struct {
	reader *zip.ReadCloser
	files  map[string]*zip.File
}

func (a *zipArchive) Entries() []string {
	names := make([]string, 0, len(a.reader.File))
	for _, f := range a.reader.File {
		names = append(names, f.Name)
	}
	return names
}

func (a *zipArchive) Has(entry string) bool {
	_, ok := a.files[entry]
	return ok
}

// Extract writes entry below destination, creating parent directories.
func (a *zipArchive) Extract(entry, destination string) error {
	f, ok := a.files[entry]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrEntryNotFound, entry)
	}

	target, err := Within(destination, entry)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("mkdir parents: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry: %w", err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.CopyBuffer(out, rc, make([]byte, copyBufferSize)); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (a *zipArchive) Close() error {
	return a.reader.Close()
}

// Within joins name onto base and fails if the result escapes base.
func Within(base, name string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}

	target := filepath.Join(absBase, filepath.FromSlash(name))
	if target != absBase && !strings.HasPrefix(target, absBase+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: illegal path %s", shared.ErrInvalidInput, name)
	}
	return target, nil
}
