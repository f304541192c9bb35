package minio

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"cropcare-service/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// LeafImagesBucket holds copies of every uploaded detection image.
const LeafImagesBucket = "leaf-images"

// MinioClient wraps the MinIO client with the image archive operations the
// service needs.
type MinioClient struct {
	client *minio.Client
	config config.MinioConfig
}

func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	endpoint := strings.TrimPrefix(cfg.MinioURL, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	isSecure, err := strconv.ParseBool(cfg.MinioSecure)
	if err != nil {
		log.Printf("Invalid value for MinIO secure flag: %v. Defaulting to false.", err)
		isSecure = false
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: isSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mc := &MinioClient{
		client: minioClient,
		config: cfg,
	}
	if err := mc.ensureBucket(ctx, LeafImagesBucket); err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO server: %w", err)
	}

	log.Printf("Successfully connected to MinIO at %s", cfg.MinioURL)
	return mc, nil
}

func (mc *MinioClient) ensureBucket(ctx context.Context, bucketName string) error {
	exists, err := mc.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	err = mc.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{
		Region: mc.config.MinioLocation,
	})
	if err != nil {
		return fmt.Errorf("error creating bucket %s: %w", bucketName, err)
	}
	log.Printf("Created bucket: %s", bucketName)
	return nil
}

// ArchiveImage uploads a stored detection image into the leaf image bucket
// under objectName.
func (mc *MinioClient) ArchiveImage(ctx context.Context, objectName, filePath, contentType string) error {
	_, err := mc.client.FPutObject(ctx, LeafImagesBucket, objectName, filePath,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to archive image %s: %w", objectName, err)
	}
	log.Printf("Archived image %s to bucket %s", objectName, LeafImagesBucket)
	return nil
}
