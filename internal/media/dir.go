package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DirStore writes each image to <Dir>/<uuid>/<name>, so documents that share
// a file name never overwrite each other's images.
type DirStore struct {
	Dir       string
	PublicURL string // optional; prefixed to <uuid>/<name> in results
}

// NewDirStore creates dir if needed.
func NewDirStore(dir, publicURL string) (*DirStore, error) {
	if dir == "" {
		return nil, errors.New("media dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &DirStore{Dir: dir, PublicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

// Upload writes the body under a fresh subdirectory of Dir. The key is the
// written path; the URL is set only when PublicURL is configured.
func (d *DirStore) Upload(_ context.Context, input UploadInput) (UploadResult, error) {
	if input.Body == nil {
		return UploadResult{}, errors.New("upload body is required")
	}
	name := filepath.Base(filepath.Clean("/" + input.Filename))
	if name == "/" || name == "." {
		return UploadResult{}, fmt.Errorf("invalid file name %q", input.Filename)
	}

	id := uuid.NewString()
	sub := filepath.Join(d.Dir, id)
	if err := os.Mkdir(sub, 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("create %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(sub, ".upload-*")
	if err != nil {
		return UploadResult{}, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, input.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return UploadResult{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return UploadResult{}, fmt.Errorf("close %s: %w", name, err)
	}
	dest := filepath.Join(sub, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return UploadResult{}, fmt.Errorf("rename %s: %w", name, err)
	}

	res := UploadResult{Key: dest}
	if d.PublicURL != "" {
		res.URL = d.PublicURL + "/" + id + "/" + name
	}
	return res, nil
}
