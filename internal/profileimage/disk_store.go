package profileimage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type diskStore struct {
	root   string
	logger *zap.Logger
}

func NewDiskStore(root string, logger ...*zap.Logger) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	l := zap.L().Named("profileimage.disk")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}

	return &diskStore{root: root, logger: l}, nil
}

func (s *diskStore) Save(ctx context.Context, employeeID string, r io.Reader) (string, error) {
	img, err := Read(r)
	if err != nil {
		return "", err
	}

	ref := NewRef(employeeID, img.Extension)
	full := s.path(ref)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	// write to a temp file first so a crash never leaves a partial image
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(img.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	s.logger.Debug("profile image saved",
		zap.String("employee_id", employeeID),
		zap.String("ref", ref),
		zap.Int("bytes", len(img.Data)),
	)
	return ref, nil
}

func (s *diskStore) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	if !ValidRef(ref) {
		return nil, "", ErrInvalidRef
	}

	data, err := os.ReadFile(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", err
	}

	return nopCloser(data), detectContentType(data), nil
}

func (s *diskStore) Delete(ctx context.Context, ref string) error {
	if !ValidRef(ref) {
		return ErrInvalidRef
	}

	err := os.Remove(s.path(ref))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *diskStore) path(ref string) string {
	return filepath.Join(s.root, filepath.FromSlash(ref))
}
