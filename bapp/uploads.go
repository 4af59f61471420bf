package bapp

import (
	"github.com/advdv/bmsg/param"
	"github.com/advdv/bmsg/upload"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// NewUploadStore returns the store for multipart file parts: S3 when
// BMSG_UPLOAD_BUCKET is set, the multipart spool on local disk otherwise.
func NewUploadStore(env Environment, cfg aws.Config, logger *zap.Logger) param.UploadStore {
	b := env.base()
	if b.UploadBucket == "" {
		return upload.NewDiskStore(b.MaxMultipartMemory)
	}

	logger.Info("storing uploads in s3",
		zap.String("bucket", b.UploadBucket),
		zap.String("prefix", b.UploadPrefix))

	return upload.NewS3Store(s3.NewFromConfig(cfg), b.UploadBucket, b.UploadPrefix, b.MaxMultipartMemory)
}
