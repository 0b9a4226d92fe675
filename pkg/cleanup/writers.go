package cleanup

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"

	"filetamer/pkg/config"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// ArchiveWriter appends files to an archive stream. Close finalizes the
// stream; the archive is incomplete until it returns nil.
type ArchiveWriter interface {
	// Add stores the content of the file at path under the entry name.
	Add(path, name string) error
	Close() error
}

// NewArchiveWriter returns the writer for format on top of w. level is a
// compression level from 0 (store) to 9 (best); tar ignores it.
func NewArchiveWriter(format config.ArchiveFormat, w io.Writer, level int) (ArchiveWriter, error) {
	switch format {
	case config.FormatZip:
		return newZipWriter(w, level), nil
	case config.FormatTar:
		return &tarWriter{tw: tar.NewWriter(w)}, nil
	case config.FormatTarGzip:
		gz, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip stream: %w", err)
		}
		return &tarWriter{tw: tar.NewWriter(gz), gz: gz}, nil
	}
	return nil, fmt.Errorf("unsupported archive format %q", format)
}

type zipWriter struct {
	zw *zip.Writer
}

func newZipWriter(w io.Writer, level int) *zipWriter {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	return &zipWriter{zw: zw}
}

func (z *zipWriter) Add(path, name string) error {
	f, info, err := openRegular(path)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build zip header for %s: %w", path, err)
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	entry, err := z.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("failed to add zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("failed to write zip entry %s: %w", name, err)
	}
	return nil
}

func (z *zipWriter) Close() error {
	return z.zw.Close()
}

type tarWriter struct {
	tw *tar.Writer
	gz *gzip.Writer
}

func (t *tarWriter) Add(path, name string) error {
	f, info, err := openRegular(path)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", path, err)
	}
	hdr.Name = name

	if err := t.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to add tar entry %s: %w", name, err)
	}
	if _, err := io.CopyN(t.tw, f, hdr.Size); err != nil {
		return fmt.Errorf("failed to write tar entry %s: %w", name, err)
	}
	return nil
}

func (t *tarWriter) Close() error {
	if err := t.tw.Close(); err != nil {
		return err
	}
	if t.gz != nil {
		return t.gz.Close()
	}
	return nil
}

// openRegular opens path, following symlinks, and requires a regular file.
func openRegular(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("%s is not a regular file", path)
	}
	return f, info, nil
}
