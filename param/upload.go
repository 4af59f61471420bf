package param

import (
	"io"
	"net/http"

	"github.com/advdv/bmsg/mediatype"
)

// Upload is a file part of a multipart request. The bytes are owned by the
// [UploadStore] that produced it.
type Upload struct {
	FieldName   string
	FileName    string
	ContentType string
	Size        int64

	open func() (io.ReadCloser, error)
}

// NewUpload returns an upload that reads its content through open.
func NewUpload(field, file, contentType string, size int64, open func() (io.ReadCloser, error)) Upload {
	return Upload{FieldName: field, FileName: file, ContentType: contentType, Size: size, open: open}
}

// Open returns the content of the upload. The caller closes it.
func (u Upload) Open() (io.ReadCloser, error) {
	if u.open == nil {
		return http.NoBody, nil
	}

	return u.open()
}

// Type returns the parsed content type, application/octet-stream when absent or malformed.
func (u Upload) Type() mediatype.MediaType {
	mt, err := mediatype.Parse(u.ContentType)
	if err != nil {
		return mediatype.OctetStream
	}

	return mt
}

// UploadStore provides the uploads of a request. Given a field name and the
// configured working directory it returns the file parts of that field in the
// order they were sent. Implementations own the backing storage.
type UploadStore interface {
	Uploads(r *http.Request, field, workDir string) ([]Upload, error)
}

// Parts holds what was read from the multipart body of one request: the
// uploads of each field and the content types of the value parts. Resolutions
// bound to the same request share it so stores run once per field.
type Parts struct {
	uploads map[string][]Upload
	types   map[string]mediatype.MediaType
}

// NewParts returns empty parts.
func NewParts() *Parts {
	return &Parts{uploads: map[string][]Upload{}, types: map[string]mediatype.MediaType{}}
}
