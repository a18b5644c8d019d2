package homer

import (
	"bytes"
	"context"
	"io/fs"
	"os"

	xe "github.com/dashsync/dashsync/pkg/errors"
)

// FileStorage loads and saves a Document as a file.
type FileStorage struct {
	// path to config.yml
	Path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

func (f *FileStorage) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, xe.WrapWithNote(f.Path, err)
	}
	doc, err := Decode(bytes.NewReader(content))
	if err != nil {
		return nil, xe.WrapWithNote(f.Path, err)
	}
	return doc, nil
}

// Save overwrites the file with doc.
//
// The file is written in place (not replaced by rename),
// because config.yml is often bind-mounted into Homer's container.
func (f *FileStorage) Save(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := bytes.NewBuffer(nil)
	if err := doc.Encode(buf); err != nil {
		return xe.WrapWithNote(f.Path, err)
	}

	mode := fs.FileMode(0644)
	if stat, err := os.Stat(f.Path); err == nil {
		mode = stat.Mode().Perm()
	}
	if err := os.WriteFile(f.Path, buf.Bytes(), mode); err != nil {
		return xe.WrapWithNote(f.Path, err)
	}
	return nil
}
