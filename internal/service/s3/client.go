package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	defaultTimeout = 30 * time.Second
	// Минимальный размер части multipart-загрузки по требованиям S3
	partSize = 5 * 1024 * 1024
)

// Client предоставляет методы для работы с S3-совместимым хранилищем
type Client struct {
	client *s3.Client
	bucket string
}

// NewClient создает клиента и сразу проверяет доступность бакета.
// Хранилище инициализируется один раз на старте сервиса, никакой
// ленивой переинициализации по ходу работы.
func NewClient(conf *Config) (*Client, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	if conf.AccessKeyID == "" || conf.SecretAccessKey == "" || conf.Bucket == "" {
		return nil, fmt.Errorf("missing required configuration: accessKeyID, secretAccessKey, and bucket are required")
	}

	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		conf.AccessKeyID,
		conf.SecretAccessKey,
		"",
	))

	client := s3.New(s3.Options{
		BaseEndpoint:     aws.String(conf.Endpoint),
		Region:           conf.Region,
		Credentials:      creds,
		RetryMode:        aws.RetryModeAdaptive,
		RetryMaxAttempts: 3,
	})

	s3Client := &Client{
		client: client,
		bucket: conf.Bucket,
	}

	// Проверяем подключение к бакету
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := s3Client.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(conf.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to access bucket %s: %w", conf.Bucket, err)
	}

	return s3Client, nil
}

// Put загружает содержимое потоком. Файлы меньше одной части уходят
// обычным PutObject, остальные — multipart-загрузкой по partSize,
// так что в памяти одновременно не больше одной части.
func (h *Client) Put(ctx context.Context, key, contentType string, body io.Reader) (int64, error) {
	if key == "" || body == nil {
		return 0, fmt.Errorf("key and body are required")
	}

	first := make([]byte, partSize)
	n, err := io.ReadFull(body, first)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// Все содержимое уместилось в одну часть
		_, putErr := h.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(h.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(first[:n]),
			ContentType: aws.String(contentType),
		})
		if putErr != nil {
			return 0, fmt.Errorf("failed to upload object to S3: %w", putErr)
		}
		return int64(n), nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read upload stream: %w", err)
	}

	return h.putMultipart(ctx, key, contentType, first, body)
}

func (h *Client) putMultipart(ctx context.Context, key, contentType string, first []byte, body io.Reader) (int64, error) {
	created, err := h.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create multipart upload: %w", err)
	}
	uploadID := *created.UploadId

	var (
		parts     []types.CompletedPart
		total     int64
		partNum   int32 = 1
		chunk           = first
		chunkSize       = len(first)
	)

	buf := make([]byte, partSize)
	for chunkSize > 0 {
		result, err := h.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:     aws.String(h.bucket),
			Key:        aws.String(key),
			UploadId:   aws.String(uploadID),
			PartNumber: aws.Int32(partNum),
			Body:       bytes.NewReader(chunk[:chunkSize]),
		})
		if err != nil {
			h.abortMultipart(key, uploadID)
			return 0, fmt.Errorf("failed to upload part %d: %w", partNum, err)
		}

		parts = append(parts, types.CompletedPart{
			ETag:       result.ETag,
			PartNumber: aws.Int32(partNum),
		})
		total += int64(chunkSize)
		partNum++

		n, err := io.ReadFull(body, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			h.abortMultipart(key, uploadID)
			return 0, fmt.Errorf("failed to read upload stream: %w", err)
		}
		chunk = buf
		chunkSize = n
	}

	_, err = h.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(h.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: parts,
		},
	})
	if err != nil {
		h.abortMultipart(key, uploadID)
		return 0, fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	return total, nil
}

// abortMultipart прерывает незавершенную загрузку, чтобы части
// не копились в бакете. Ошибка только логируется: вызывающему
// уже возвращается первичная ошибка загрузки.
func (h *Client) abortMultipart(key, uploadID string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := h.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(h.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		log.Printf("[S3] Failed to abort multipart upload for %s: %v", key, err)
	}
}

// OpenReadStream открывает поток чтения объекта.
func (h *Client) OpenReadStream(ctx context.Context, key string) (Object, error) {
	result, err := h.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("object not found: %s", key)
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	obj := &object{ReadCloser: result.Body}
	if result.ContentLength != nil {
		obj.contentLength = *result.ContentLength
	}
	if result.ContentType != nil {
		obj.contentType = *result.ContentType
	}

	return obj, nil
}

// Delete удаляет объект из S3
func (h *Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	// Проверяем существование объекта перед удалением
	_, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})

	// Если объекта нет, считаем операцию успешной
	var nf *types.NotFound
	if err != nil && errors.As(err, &nf) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check object existence: %w", err)
	}

	_, err = h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}

	return nil
}
