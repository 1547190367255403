// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload stores user profile pictures on the local filesystem.
// Files are validated as real images before being written and renamed
// to a UUID filename so uploads can never collide or carry a
// user-controlled name.
package upload

import (
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

// ErrUnsupportedFormat means the uploaded file is not a PNG, JPEG, or GIF.
var ErrUnsupportedFormat = errors.New("upload: unsupported image format")

// Store writes profile pictures under a single directory.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a Store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory files are stored in, for static serving.
func (s *Store) Dir() string {
	return s.dir
}

// SaveProfilePicture validates the uploaded file as an image and writes
// it under a random filename, returning the name for storage on the
// user row.
func (s *Store) SaveProfilePicture(file multipart.File) (string, error) {
	// Decoding the header proves it's a real image of a supported format.
	_, format, err := image.DecodeConfig(file)
	if err != nil {
		return "", ErrUnsupportedFormat
	}
	switch format {
	case "png", "jpeg", "gif":
	default:
		return "", ErrUnsupportedFormat
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name, err := randomName(format)
	if err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return name, nil
}

// Remove deletes a previously stored file. A missing file is not an
// error, so replacing a picture whose file was lost still succeeds.
func (s *Store) Remove(name string) error {
	// Reject anything that could traverse out of the upload directory.
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("upload: invalid filename %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

// randomName builds a UUID filename with the format's extension.
func randomName(format string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}
	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}
	return id.String() + "." + ext, nil
}
