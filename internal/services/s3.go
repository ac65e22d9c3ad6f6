package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"singapore-family-venues-scraper/internal/models"
)

// S3Publisher uploads the finished listings artifact to S3
type S3Publisher struct {
	client     *s3.Client
	bucketName string
	region     string
}

// S3UploadResult describes one completed upload
type S3UploadResult struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	PublicURL  string    `json:"public_url"`
}

// NewS3Publisher creates a publisher for the given bucket; when bucket is
// empty the S3_BUCKET_NAME environment variable is used.
func NewS3Publisher(ctx context.Context, bucket string) (*S3Publisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if bucket == "" {
		bucket = os.Getenv("S3_BUCKET_NAME")
	}
	if bucket == "" {
		return nil, fmt.Errorf("no S3 bucket configured")
	}

	return &S3Publisher{
		client:     s3.NewFromConfig(cfg),
		bucketName: bucket,
		region:     cfg.Region,
	}, nil
}

// PublishListings uploads a listings artifact as formatted JSON
func (p *S3Publisher) PublishListings(ctx context.Context, output models.ListingsOutput, key string) (*S3UploadResult, error) {
	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listings to JSON: %w", err)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(jsonData),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &S3UploadResult{
		Key:        key,
		Size:       int64(len(jsonData)),
		UploadedAt: time.Now(),
		PublicURL:  fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucketName, p.region, key),
	}, nil
}
