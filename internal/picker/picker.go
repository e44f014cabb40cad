package picker

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrCanceled is returned when the user backs out of the picker.
var ErrCanceled = errors.New("document picker canceled")

// ErrNotAllowed is returned when the chosen file is not one of the requested types.
var ErrNotAllowed = errors.New("document type not allowed")

// IsCancel reports whether err means the user cancelled the picker.
func IsCancel(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Type is a family of documents the picker may return.
type Type struct {
	Name       string
	Extensions []string
	MIMEPrefix string
}

// Images restricts the picker to image files.
var Images = Type{
	Name:       "images",
	Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"},
	MIMEPrefix: "image/",
}

// Options configures a pick.
type Options struct {
	Types               []Type
	AllowMultiSelection bool
}

// Extensions returns every extension the options accept.
func (o Options) Extensions() []string {
	var out []string
	for _, t := range o.Types {
		for _, ext := range t.Extensions {
			if !slices.Contains(out, ext) {
				out = append(out, ext)
			}
		}
	}
	return out
}

func (o Options) allows(ext, mime string) bool {
	if len(o.Types) == 0 {
		return true
	}
	for _, t := range o.Types {
		if slices.Contains(t.Extensions, ext) && (t.MIMEPrefix == "" || strings.HasPrefix(mime, t.MIMEPrefix)) {
			return true
		}
	}
	return false
}

// Document describes a picked file.
type Document struct {
	URI  string
	Name string
	Type string
	Size int64
}

// Open validates path against opts and describes it. The MIME type is sniffed from the
// first bytes of the file.
func Open(path string, opts Options) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return Document{}, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Document{}, fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%s is a directory: %w", abs, ErrNotAllowed)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	mime := http.DetectContentType(head[:n])

	ext := strings.ToLower(filepath.Ext(abs))
	if !opts.allows(ext, mime) {
		return Document{}, fmt.Errorf("%s (%s): %w", filepath.Base(abs), mime, ErrNotAllowed)
	}
	return Document{
		URI:  "file://" + filepath.ToSlash(abs),
		Name: filepath.Base(abs),
		Type: mime,
		Size: info.Size(),
	}, nil
}
