package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/terratensor/pdfredact/internal/awserr"
	"github.com/terratensor/pdfredact/internal/errs"
)

// GetObjectAPI - чтение объекта из S3.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source скачивает исходный документ целиком.
type S3Source struct {
	api GetObjectAPI
}

func NewS3Source(api GetObjectAPI) *S3Source {
	return &S3Source{api: api}
}

func (s *S3Source) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errs.Transient("s3 get object", awserr.Describe(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errs.Transient("s3 read body", fmt.Errorf("s3://%s/%s: %w", bucket, key, err))
	}
	return data, nil
}
