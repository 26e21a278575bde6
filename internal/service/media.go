package service

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smizereens/foodgram-st/internal/config"
)

// Media writes decoded base64 images under the configured media dir.
// Filenames are generated, callers keep only the returned name.
type Media struct {
	dir    string
	logger *zap.SugaredLogger
}

func NewMedia(cfg *config.Config, l *zap.SugaredLogger) (*Media, error) {
	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create media dir")
	}
	return &Media{
		dir:    cfg.MediaDir,
		logger: l,
	}, nil
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ParseDataURI splits a "data:<mime>;base64,<payload>" string into its
// mime type and decoded payload.
func ParseDataURI(s string) (string, []byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return "", nil, errors.New("data URI has no payload")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errors.New("data URI is not base64-encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Wrap(err, "decode payload")
	}
	return mime, data, nil
}

// Save decodes a data URI and stores it as a new file, returning the
// generated filename.
func (m *Media) Save(dataURI string) (string, error) {
	mime, data, err := ParseDataURI(dataURI)
	if err != nil {
		return "", ErrInvalidImage
	}

	ext, ok := imageExtensions[mime]
	if !ok {
		ext = ".img"
	}
	name := uuid.New().String() + ext

	if err := os.WriteFile(filepath.Join(m.dir, name), data, 0o644); err != nil {
		m.logger.Errorw("write media file", "file", name, "error", err)
		return "", ErrMediaStorage
	}
	return name, nil
}

// Delete removes a stored file. A missing file is not an error.
func (m *Media) Delete(name string) error {
	if name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(m.dir, name)); err != nil && !os.IsNotExist(err) {
		m.logger.Errorw("remove media file", "file", name, "error", err)
		return ErrMediaStorage
	}
	return nil
}
