// Package upload provides the storage backends that hand multipart file parts
// to the parameter resolver.
package upload

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/advdv/bmsg/param"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// DiskStore serves uploads from the multipart form parsed by net/http. Parts
// beyond MaxMemory are spooled to temporary files that net/http removes when
// the request ends.
type DiskStore struct {
	MaxMemory int64
}

// NewDiskStore returns a disk store. A non-positive maxMemory uses [param.DefaultMaxMemory].
func NewDiskStore(maxMemory int64) *DiskStore {
	if maxMemory <= 0 {
		maxMemory = param.DefaultMaxMemory
	}

	return &DiskStore{MaxMemory: maxMemory}
}

// Uploads implements [param.UploadStore].
func (s *DiskStore) Uploads(r *http.Request, field, _ string) ([]param.Upload, error) {
	if err := ensureMultipart(r, s.MaxMemory); err != nil {
		return nil, err
	}

	return lo.Map(r.MultipartForm.File[field], func(fh *multipart.FileHeader, _ int) param.Upload {
		return param.NewUpload(field, fh.Filename, fh.Header.Get("Content-Type"), fh.Size,
			func() (io.ReadCloser, error) { return fh.Open() })
	}), nil
}

func ensureMultipart(r *http.Request, maxMemory int64) error {
	if r.MultipartForm != nil {
		return nil
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return errors.Wrap(err, "parse multipart form")
	}

	return nil
}

var _ param.UploadStore = (*DiskStore)(nil)
