package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"
)

// ErrUploaderDisabled indicates that image storage is not configured.
var ErrUploaderDisabled = errors.New("media uploader disabled")

// UploadInput wraps the payload required for persisting a file.
type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// UploadResult captures the canonical object key and its accessible URL.
type UploadResult struct {
	Key string
	URL string
}

// Uploader hides the backing implementation for storing files.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (UploadResult, error)
}

type disabledUploader struct{}

func (disabledUploader) Upload(_ context.Context, _ UploadInput) (UploadResult, error) {
	return UploadResult{}, ErrUploaderDisabled
}

// Disabled returns an uploader that always signals disabled uploads.
func Disabled() Uploader {
	return disabledUploader{}
}

// ImageSink adapts an Uploader to the extraction engine's sink. The stored
// location is the public URL when the uploader has one, otherwise the key.
type ImageSink struct {
	uploader Uploader
}

func Sink(u Uploader) *ImageSink {
	return &ImageSink{uploader: u}
}

func (s *ImageSink) Save(ctx context.Context, data []byte, suggestedName string) (string, error) {
	res, err := s.uploader.Upload(ctx, UploadInput{
		Filename:    suggestedName,
		ContentType: ContentType(suggestedName),
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
	})
	if err != nil {
		return "", err
	}
	if res.URL != "" {
		return res.URL, nil
	}
	return res.Key, nil
}

// ContentType guesses the MIME type from the file extension.
func ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
