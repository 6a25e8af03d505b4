package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/stowage/stowage/interfaces"
)

// S3ClientConfig configures an S3Client.
type S3ClientConfig struct {
	Region    string
	Endpoint  string // optional, for S3-compatible services
	AccessKey string
	SecretKey string
	PathStyle bool // path-style addressing, required by most S3-compatible services
}

// S3Client implements the ObjectClient boundary using Amazon S3 or
// compatible services. Request signing, retries and transport belong to the
// AWS SDK; this adapter only maps SDK results onto the uniform
// ObjectResponse shape.
type S3Client struct {
	client *s3.S3
	log    *slog.Logger
}

// NewS3Client creates an S3 object client. If accessKey and secretKey are
// provided the client signs requests with them; otherwise the SDK default
// credential chain applies, which still allows reads from public buckets.
func NewS3Client(cfg S3ClientConfig, log *slog.Logger) (*S3Client, error) {
	awsCfg := aws.Config{
		Region: aws.String(cfg.Region),
	}

	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.PathStyle {
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		log.Warn("No S3 credentials provided - write operations may fail unless bucket is public writable")
	}

	sess, err := session.NewSession(&awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Client{
		client: s3.New(sess),
		log:    log,
	}, nil
}

// GetObject fetches an object body.
func (c *S3Client) GetObject(ctx context.Context, bucket, key string) interfaces.ObjectResponse {
	result, err := c.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errorResponse(err)
	}
	defer result.Body.Close()

	body, err := io.ReadAll(result.Body)
	if err != nil {
		return interfaces.ObjectResponse{Err: fmt.Errorf("failed to read object body: %w", err)}
	}

	return interfaces.ObjectResponse{
		Status:  http.StatusOK,
		Body:    body,
		Headers: objectHeaders(result.ContentLength, result.ContentType, result.LastModified),
	}
}

// PutObject stores body under key. Content-Type and x-amz-acl headers map
// onto the native request fields; all other entries become object metadata.
func (c *S3Client) PutObject(ctx context.Context, bucket, key string, body []byte, headers map[string]string) interfaces.ObjectResponse {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}

	metadata := map[string]*string{}
	for name, value := range headers {
		switch {
		case strings.EqualFold(name, "Content-Type"):
			input.ContentType = aws.String(value)
		case strings.EqualFold(name, "x-amz-acl"):
			input.ACL = aws.String(value)
		default:
			metadata[name] = aws.String(value)
		}
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
	}

	if _, err := c.client.PutObjectWithContext(ctx, input); err != nil {
		return errorResponse(err)
	}

	return interfaces.ObjectResponse{Status: http.StatusOK}
}

// DeleteObject removes an object. The service replies with a success status
// whether or not the key existed.
func (c *S3Client) DeleteObject(ctx context.Context, bucket, key string) interfaces.ObjectResponse {
	if _, err := c.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return errorResponse(err)
	}

	return interfaces.ObjectResponse{Status: http.StatusNoContent}
}

// GetObjectInfo probes existence and metadata with a head request, without
// fetching the body.
func (c *S3Client) GetObjectInfo(ctx context.Context, bucket, key string) interfaces.ObjectResponse {
	result, err := c.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errorResponse(err)
	}

	return interfaces.ObjectResponse{
		Status:  http.StatusOK,
		Headers: objectHeaders(result.ContentLength, result.ContentType, result.LastModified),
	}
}

// errorResponse maps an SDK error onto an ObjectResponse, preserving the
// HTTP status when the SDK carries one (404 head probes in particular).
func errorResponse(err error) interfaces.ObjectResponse {
	if reqErr, ok := err.(awserr.RequestFailure); ok {
		return interfaces.ObjectResponse{Err: err, Status: reqErr.StatusCode()}
	}
	return interfaces.ObjectResponse{Err: err}
}

// objectHeaders rebuilds the HTTP-style header view of an SDK response, so
// the backend reads Content-Length and Last-Modified uniformly.
func objectHeaders(contentLength *int64, contentType *string, lastModified *time.Time) http.Header {
	headers := http.Header{}
	if contentLength != nil {
		headers.Set("Content-Length", strconv.FormatInt(*contentLength, 10))
	}
	if contentType != nil {
		headers.Set("Content-Type", *contentType)
	}
	if lastModified != nil {
		headers.Set("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
	}
	return headers
}
