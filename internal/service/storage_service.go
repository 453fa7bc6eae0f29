package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"app/internal/acl"
	"app/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrStorageNotConfigured = errors.New("object storage not configured")
	ErrObjectNotFound       = errors.New("object not found")
)

const uploadURLTTL = 15 * time.Minute

// ObjectStorage issues signed upload URLs, streams objects and manages
// per-object ACLs.
type ObjectStorage interface {
	// CreateSignedUploadURL mints a time-boxed PUT URL scoped to a path
	// containing the user id and a fresh random identifier, so uploads
	// cannot collide or overwrite another user's objects.
	CreateSignedUploadURL(ctx context.Context, userID, contentType string) (*model.SignedUpload, error)
	// OpenObject returns a streaming reader and the content type for the
	// object at bucketKey. The caller must close the reader.
	OpenObject(ctx context.Context, bucketKey string) (io.ReadCloser, string, error)
	SetObjectACL(ctx context.Context, bucketKey string, public bool) error
	DeleteObject(ctx context.Context, bucketKey string) error
}

type s3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
	privateDir    string
	logger        zerolog.Logger
}

// NewS3Storage creates an ObjectStorage backed by an S3-compatible bucket.
func NewS3Storage(client *s3.Client, bucketName, privateDir string, logger zerolog.Logger) ObjectStorage {
	return &s3Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucketName:    bucketName,
		privateDir:    privateDir,
		logger:        logger.With().Str("service", "ObjectStorage").Logger(),
	}
}

func (s *s3Storage) CreateSignedUploadURL(ctx context.Context, userID, contentType string) (*model.SignedUpload, error) {
	objectPath := fmt.Sprintf("%s/uploads/%s/%s", s.privateDir, userID, uuid.NewString())
	request, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectPath),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadURLTTL))
	if err != nil {
		s.logger.Error().Err(err).Str("object_path", objectPath).Msg("Failed to generate presigned PUT URL")
		return nil, fmt.Errorf("failed to generate presigned PUT URL: %w", err)
	}

	return &model.SignedUpload{
		UploadURL:      request.URL,
		ObjectPath:     objectPath,
		NormalizedPath: acl.ObjectPathPrefix + objectPath,
		ExpiresAt:      time.Now().Add(uploadURLTTL),
	}, nil
}

func (s *s3Storage) OpenObject(ctx context.Context, bucketKey string) (io.ReadCloser, string, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(bucketKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", ErrObjectNotFound
		}
		s.logger.Error().Err(err).Str("bucket_key", bucketKey).Msg("Failed to fetch object")
		return nil, "", fmt.Errorf("fetch object: %w", err)
	}
	contentType := "application/octet-stream"
	if resp.ContentType != nil && *resp.ContentType != "" {
		contentType = *resp.ContentType
	}
	return resp.Body, contentType, nil
}

func (s *s3Storage) SetObjectACL(ctx context.Context, bucketKey string, public bool) error {
	objectACL := types.ObjectCannedACLPrivate
	if public {
		objectACL = types.ObjectCannedACLPublicRead
	}
	_, err := s.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(bucketKey),
		ACL:    objectACL,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("bucket_key", bucketKey).Bool("public", public).Msg("Failed to set object ACL")
		return fmt.Errorf("set object acl: %w", err)
	}
	return nil
}

func (s *s3Storage) DeleteObject(ctx context.Context, bucketKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(bucketKey),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("bucket_key", bucketKey).Msg("Failed to delete object")
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
