package storage

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/terratensor/pdfredact/internal/awserr"
	"github.com/terratensor/pdfredact/internal/errs"
)

type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink кладет документ одним PutObject; S3 не показывает частично записанных объектов.
type S3Sink struct {
	api PutObjectAPI
	loc Location
}

func NewS3Sink(api PutObjectAPI, loc Location) *S3Sink {
	return &S3Sink{api: api, loc: loc}
}

func (s *S3Sink) String() string {
	return s.loc.String()
}

func (s *S3Sink) Write(ctx context.Context, data []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.loc.Bucket),
		Key:           aws.String(s.loc.Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(s.loc.Key)),
	})
	if err != nil {
		return errs.Transient("s3 put object", awserr.Describe(err))
	}
	return nil
}

func contentType(key string) string {
	if strings.HasSuffix(key, ".gz") {
		return "application/gzip"
	}
	return "application/pdf"
}
