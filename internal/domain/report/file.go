package report

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/klauspost/pgzip"
)

const (
	plainExt = ".txt"
	gzipExt  = ".txt.gz"
)

// FileSaver stores each report as a file named after its ID. The file
// modification time carries the report creation time.
type FileSaver struct {
	dir      string
	compress bool
}

var (
	_ Saver  = (*FileSaver)(nil)
	_ Finder = (*FileSaver)(nil)
)

// NewFileSaver returns a FileSaver writing into dir. When compress is set,
// files are gzip-compressed.
func NewFileSaver(dir string, compress bool) *FileSaver {
	return &FileSaver{dir: dir, compress: compress}
}

// Save writes r atomically: content goes to a temporary file that is renamed
// into place once complete.
func (s *FileSaver) Save(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create dir %s", s.dir)
	}

	ext := plainExt
	if s.compress {
		ext = gzipExt
	}
	path := filepath.Join(s.dir, r.ID+ext)

	tmp, err := os.CreateTemp(s.dir, ".report-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := s.write(tmp, r.Content); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Chtimes(tmp.Name(), r.CreatedAt, r.CreatedAt); err != nil {
		return errors.Wrap(err, "set report time")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "rename to %s", path)
	}

	return nil
}

func (s *FileSaver) write(w io.Writer, content string) error {
	if !s.compress {
		_, err := io.WriteString(w, content)
		return err
	}

	gz := pgzip.NewWriter(w)
	if _, err := io.WriteString(gz, content); err != nil {
		_ = gz.Close()
		return err
	}
	return gz.Close()
}

// Find loads the report with the given ID. Both plain and compressed files
// are recognized regardless of the compress setting.
func (s *FileSaver) Find(ctx context.Context, id string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// IDs are UUIDs; anything else cannot name a stored file.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	for _, ext := range []string{plainExt, gzipExt} {
		r, err := s.read(filepath.Join(s.dir, id+ext), ext == gzipExt)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		r.ID = id
		return r, nil
	}

	return nil, ErrNotFound
}

func (s *FileSaver) read(path string, compressed bool) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	var src io.Reader = f
	if compressed {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		src = gz
	}

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	return &Report{
		Content:   string(content),
		CreatedAt: info.ModTime().UTC(),
	}, nil
}
