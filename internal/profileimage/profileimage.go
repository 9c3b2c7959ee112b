// Package profileimage stores the binary profile pictures attached to
// employee records. Records only carry the opaque reference returned by Save.
package profileimage

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxSize is the largest accepted upload.
const MaxSize = 5 << 20

//go:generate mockgen -source=profileimage.go -destination=mock/profileimage_mock.go -package=mock

type Store interface {
	// Save validates and persists the image and returns its reference.
	Save(ctx context.Context, employeeID string, r io.Reader) (string, error)
	// Open returns the image and its detected content type.
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
	// Delete removes the image. Deleting a missing image is not an error.
	Delete(ctx context.Context, ref string) error
}

// Image is an upload that passed validation.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Read buffers at most MaxSize bytes and checks the content is an image.
func Read(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if len(data) > MaxSize {
		return nil, ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrUnsupportedType
	}

	return &Image{
		Data:        data,
		ContentType: mt.String(),
		Extension:   mt.Extension(),
	}, nil
}

// NewRef builds a reference of the form <employeeID>/<uuid><ext>.
func NewRef(employeeID, ext string) string {
	return path.Join(employeeID, uuid.NewString()+ext)
}

// ValidRef rejects references that could escape the store root.
func ValidRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "/") || strings.Contains(ref, "\\") {
		return false
	}
	for _, part := range strings.Split(ref, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

func detectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

func nopCloser(data []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(data))
}
