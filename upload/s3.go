package upload

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/advdv/bmsg/param"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// S3API is the part of the S3 client used by [S3Store].
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store copies the file parts of a multipart request into a bucket and
// serves the uploads from there. Objects are keyed below Prefix by a random
// id and the submitted file name. Removing them is left to bucket lifecycle
// rules.
type S3Store struct {
	client    S3API
	bucket    string
	prefix    string
	maxMemory int64
}

// NewS3Store returns a store that writes to bucket below prefix.
func NewS3Store(client S3API, bucket, prefix string, maxMemory int64) *S3Store {
	if maxMemory <= 0 {
		maxMemory = param.DefaultMaxMemory
	}

	return &S3Store{client: client, bucket: bucket, prefix: prefix, maxMemory: maxMemory}
}

// Uploads implements [param.UploadStore].
func (s *S3Store) Uploads(r *http.Request, field, _ string) ([]param.Upload, error) {
	if err := ensureMultipart(r, s.maxMemory); err != nil {
		return nil, err
	}

	headers := r.MultipartForm.File[field]
	uploads := make([]param.Upload, 0, len(headers))

	for _, fh := range headers {
		if fh.Filename == "" {
			continue
		}

		key, err := s.put(r.Context(), fh)
		if err != nil {
			return nil, errors.Wrapf(err, "store upload %q of field %q", fh.Filename, field)
		}

		uploads = append(uploads, param.NewUpload(field, fh.Filename, fh.Header.Get("Content-Type"), fh.Size,
			s.opener(r.Context(), key)))
	}

	return uploads, nil
}

// Key returns the object key the upload with the given id and file name is stored under.
func (s *S3Store) Key(id, fileName string) string {
	return path.Join(s.prefix, id, path.Base(fileName))
}

func (s *S3Store) put(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "open part")
	}
	defer f.Close()

	key := s.Key(uuid.NewString(), fh.Filename)

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(fh.Size),
	}

	if ct := fh.Header.Get("Content-Type"); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", errors.Wrap(err, "put object")
	}

	return key, nil
}

func (s *S3Store) opener(ctx context.Context, key string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "get object %q", key)
		}

		return out.Body, nil
	}
}

var _ param.UploadStore = (*S3Store)(nil)
