// utils/profile_photo_upload.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type ProfilePhotoConfig struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	PublicURL       string
}

// ProfilePhotoClient stores parent profile photos in an S3-compatible bucket
// (Cloudflare R2) and hands back public URLs.
type ProfilePhotoClient struct {
	client *s3.Client
	config ProfilePhotoConfig
}

func NewProfilePhotoClient(cfg ProfilePhotoConfig) (*ProfilePhotoClient, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("missing required R2 configuration parameters")
	}

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID),
		}, nil
	})

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.AccessKeySecret,
			"",
		)),
		config.WithRetryer(func() aws.Retryer {
			return aws.NopRetryer{}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	// Verify bucket exists and we have permissions
	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: aws.String(cfg.BucketName),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") {
			return nil, fmt.Errorf("bucket %s not found or you don't have permission to access it", cfg.BucketName)
		}
		return nil, fmt.Errorf("failed to access bucket: %w", err)
	}

	return &ProfilePhotoClient{
		client: client,
		config: cfg,
	}, nil
}

// UploadProfilePhoto uploads a parent's photo under "profile_photos/" and
// returns its public URL.
func (r *ProfilePhotoClient) UploadProfilePhoto(ctx context.Context, file io.Reader, originalFileName, keycloakID string) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file reader cannot be nil")
	}
	if originalFileName == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	contentType := photoContentType(originalFileName)
	if contentType == "" {
		return "", fmt.Errorf("unsupported photo format: %s", filepath.Ext(originalFileName))
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	ext := filepath.Ext(originalFileName)
	uniqueName := fmt.Sprintf("profile_photos/%s_%s%s", keycloakID, uuid.New().String(), ext)

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(uniqueName),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", r.config.PublicURL, uniqueName), nil
}

// DeleteProfilePhoto removes a previously uploaded photo.
func (r *ProfilePhotoClient) DeleteProfilePhoto(ctx context.Context, fileName string) error {
	if fileName == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Accept either a bare key or a full public URL.
	fileName = strings.TrimPrefix(fileName, r.config.PublicURL+"/")

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.config.BucketName),
		Key:    aws.String(fileName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from R2: %w", err)
	}
	return nil
}

// photoContentType returns "" for anything that isn't an image format we
// accept as a profile photo.
func photoContentType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
