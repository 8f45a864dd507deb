package database

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"realtime_chat_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOClient definition minio client
type MinIOClient struct {
	Client     *minio.Client
	BucketName string
	baseURL    string
}

// NewMinIOConnection create a new minio connection have retry
func NewMinIOConnection(ctx context.Context, d MinIOConnection) (*MinIOClient, error) {
	var mc *MinIOClient
	var err error

	attempts := d.RetryCount
	if attempts <= 0 {
		attempts = 1
	}

	for i := 1; i <= attempts; i++ {
		mc, err = NewMinioClient(ctx, d)
		if err == nil {
			logger.Log.Info("minIO connected", zap.String("endpoint", d.Endpoint), zap.Int("attempt", i))
			return mc, nil
		}

		logger.Log.Warn("minIO connect failed", zap.String("endpoint", d.Endpoint), zap.Int("attempt", i), zap.Error(err))
		if i < attempts {
			time.Sleep(d.RetryInterval)
		}
	}

	return nil, err
}

// NewMinioClient create a new minio client, the bucket is created with public read when missing
func NewMinioClient(ctx context.Context, d MinIOConnection) (*MinIOClient, error) {
	minioClient, err := minio.New(d.Endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(d.User, d.Password, ""),
			Secure: d.UseSSL,
		})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 失敗: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, d.BucketName)
	if err != nil {
		return nil, fmt.Errorf("檢查 bucket [%s] 失敗: %w", d.BucketName, err)
	}

	if !exists {
		if err = minioClient.MakeBucket(ctx, d.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("建立 bucket [%s] 失敗: %w", d.BucketName, err)
		}
		if err = minioClient.SetBucketPolicy(ctx, d.BucketName, publicReadPolicy(d.BucketName)); err != nil {
			return nil, fmt.Errorf("設定 bucket [%s] policy 失敗: %w", d.BucketName, err)
		}
		logger.Log.Info("bucket created", zap.String("bucket", d.BucketName))
	}

	return &MinIOClient{
		Client:     minioClient,
		BucketName: d.BucketName,
		baseURL:    objectBaseURL(d),
	}, nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

func objectBaseURL(d MinIOConnection) string {
	if d.PublicURL != "" {
		return strings.TrimRight(d.PublicURL, "/") + "/" + d.BucketName
	}
	scheme := "http"
	if d.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, d.Endpoint, d.BucketName)
}

// ObjectURL public url of an object in the bucket
func (m *MinIOClient) ObjectURL(objectName string) string {
	return m.baseURL + "/" + objectName
}

// UploadBytes put data under objectName
func (m *MinIOClient) UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.BucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// UploadImage store a base64 data URL image under folder and return its public URL
func (m *MinIOClient) UploadImage(ctx context.Context, folder, dataURL string) (string, error) {
	img, err := ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), img.Extension())
	if err := m.UploadBytes(ctx, objectName, img.Data, img.ContentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}

	return m.ObjectURL(objectName), nil
}
