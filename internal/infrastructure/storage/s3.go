package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/yashdave182/medinote/config"
	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// S3AudioStore keeps recorded audio objects in a private S3 bucket
type S3AudioStore struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logrus.Logger
}

func NewS3AudioStore(ctx context.Context, cfg config.StorageConfig, log *logrus.Logger) (*S3AudioStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3AudioStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    log,
	}, nil
}

// ObjectKey builds <prefix>/<practitioner>/<consultation>/<uuid><ext>
func (s *S3AudioStore) ObjectKey(practitionerID, consultationID uuid.UUID, audio *entity.Audio) string {
	name := uuid.NewString() + Extension(audio)
	return path.Join(s.prefix, practitionerID.String(), consultationID.String(), name)
}

func (s *S3AudioStore) Put(ctx context.Context, key string, audio *entity.Audio) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(audio.Data),
		ContentType: aws.String(ContentType(audio)),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	s.log.Debugf("Stored audio object s3://%s/%s (%d bytes)", s.bucket, key, audio.Size())
	return nil
}

// Delete removes the object. Deleting a missing key is not an error.
func (s *S3AudioStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// ContentType returns the declared mime type or sniffs it from the payload
func ContentType(audio *entity.Audio) string {
	if audio.MimeType != "" {
		return audio.MimeType
	}
	return mimetype.Detect(audio.Data).String()
}

// Extension picks a file extension for the audio payload
func Extension(audio *entity.Audio) string {
	if audio.MimeType != "" {
		base := strings.TrimSpace(strings.SplitN(audio.MimeType, ";", 2)[0])
		if mt := mimetype.Lookup(base); mt != nil && mt.Extension() != "" {
			return mt.Extension()
		}
	}
	return mimetype.Detect(audio.Data).Extension()
}
