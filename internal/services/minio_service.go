package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Objects under publicPrefix are readable anonymously; everything else needs
// a presigned URL.
const (
	publicPrefix  = "public/"
	privatePrefix = "private/"
)

// Upload is a file received from a multipart form.
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// Ext returns the lower-cased file extension of the upload, if any.
func (u *Upload) Ext() string {
	return strings.ToLower(path.Ext(u.Filename))
}

type StorageService interface {
	// UploadPublic stores an object readable through its plain URL and
	// returns that URL.
	UploadPublic(ctx context.Context, objectName string, upload *Upload) (string, error)
	// UploadPrivate stores an object and returns its object name.
	UploadPrivate(ctx context.Context, objectName string, upload *Upload) (string, error)
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, objectName string) error
	EnsureBucketExists(ctx context.Context) error
	Ping(ctx context.Context) error
}

type minioClient struct {
	client *minio.Client
	bucket string
}

func NewMinioService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioClient{client: client, bucket: bucket}, nil
}

func (m *minioClient) UploadPublic(ctx context.Context, objectName string, upload *Upload) (string, error) {
	objectName = publicPrefix + strings.TrimPrefix(objectName, "/")
	if err := m.put(ctx, objectName, upload); err != nil {
		return "", err
	}
	endpoint := m.client.EndpointURL()
	return fmt.Sprintf("%s://%s/%s/%s", endpoint.Scheme, endpoint.Host, m.bucket, objectName), nil
}

func (m *minioClient) UploadPrivate(ctx context.Context, objectName string, upload *Upload) (string, error) {
	objectName = privatePrefix + strings.TrimPrefix(objectName, "/")
	if err := m.put(ctx, objectName, upload); err != nil {
		return "", err
	}
	return objectName, nil
}

func (m *minioClient) put(ctx context.Context, objectName string, upload *Upload) error {
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.bucket, objectName, upload.Reader, upload.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

func (m *minioClient) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioClient) Delete(ctx context.Context, objectName string) error {
	return m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
}

// EnsureBucketExists creates the bucket on first start and grants anonymous
// read on the public prefix.
func (m *minioClient) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}
	return m.client.SetBucketPolicy(ctx, m.bucket, publicReadPolicy(m.bucket))
}

// Ping reports whether the bucket is reachable.
func (m *minioClient) Ping(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("bucket %s does not exist", m.bucket)
	}
	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/%s*"]}]}`, bucket, publicPrefix)
}
