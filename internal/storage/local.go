// Package storage provides the attachment byte store. Attachments are
// addressed by opaque storage keys; metadata lives in the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrTooLarge indicates the payload exceeded the configured size limit.
	ErrTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrInvalidKey indicates a storage key that escapes the storage root.
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrNotFound indicates the stored bytes are missing.
	ErrNotFound = errors.New("stored file not found")
)

// StoredFile describes bytes written to the store.
type StoredFile struct {
	Key          string
	OriginalName string
	ContentType  string
	Size         int64
}

// Store abstracts attachment byte storage.
type Store interface {
	Store(ctx context.Context, category, filename, contentType string, r io.Reader) (StoredFile, error)
	Open(key string) (io.ReadSeekCloser, error)
	Remove(key string) error
}

// Local keeps attachment bytes on the local filesystem under a base
// directory, one subdirectory per category.
type Local struct {
	baseDir string
	maxSize int64
	logger  zerolog.Logger
}

// NewLocal creates the base directory and returns a local store. maxSizeMB
// caps individual files; zero or negative falls back to 10 MB.
func NewLocal(baseDir string, maxSizeMB int, logger zerolog.Logger) (*Local, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	absolute, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage base dir: %w", err)
	}
	if err := os.MkdirAll(absolute, 0o755); err != nil {
		return nil, fmt.Errorf("create storage base dir: %w", err)
	}

	return &Local{
		baseDir: absolute,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

func (l *Local) Store(ctx context.Context, category, filename, contentType string, r io.Reader) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}

	storedName := uuid.NewString()
	if ext := filepath.Ext(filename); ext != "" && ext != "." {
		storedName += ext
	}

	targetDir := filepath.Join(l.baseDir, filepath.Base(category))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create category dir: %w", err)
	}

	target := filepath.Join(targetDir, storedName)
	out, err := os.Create(target)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create stored file: %w", err)
	}

	written, err := io.Copy(out, io.LimitReader(r, l.maxSize+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return StoredFile{}, fmt.Errorf("write stored file: %w", err)
	}
	if written > l.maxSize {
		_ = os.Remove(target)
		return StoredFile{}, ErrTooLarge
	}

	if strings.TrimSpace(contentType) == "" {
		if detected, err := mimetype.DetectFile(target); err == nil {
			contentType = detected.String()
		} else {
			l.logger.Warn().Err(err).Str("key", storedName).Msg("content type detection failed")
			contentType = "application/octet-stream"
		}
	}

	key := filepath.ToSlash(filepath.Join(filepath.Base(category), storedName))

	return StoredFile{
		Key:          key,
		OriginalName: filepath.Base(filename),
		ContentType:  contentType,
		Size:         written,
	}, nil
}

// Open resolves a storage key to a readable handle. Keys are normalized and
// must stay within the storage root.
func (l *Local) Open(key string) (io.ReadSeekCloser, error) {
	resolved, err := l.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open stored file: %w", err)
	}

	return file, nil
}

// Remove deletes stored bytes. Used to roll back when the surrounding
// metadata transaction fails.
func (l *Local) Remove(key string) error {
	resolved, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}

func (l *Local) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrInvalidKey
	}

	resolved := filepath.Clean(filepath.Join(l.baseDir, filepath.FromSlash(key)))
	if !strings.HasPrefix(resolved, l.baseDir+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}

	return resolved, nil
}
