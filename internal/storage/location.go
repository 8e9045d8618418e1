package storage

import (
	"fmt"
	"strings"
)

const s3Scheme = "s3://"

// Location - объект в S3.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return s3Scheme + l.Bucket + "/" + l.Key
}

// ParseLocation разбирает адрес вида s3://bucket/key.
func ParseLocation(uri string) (Location, error) {
	if !strings.HasPrefix(uri, s3Scheme) {
		return Location{}, fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return Location{}, fmt.Errorf("s3 uri must be s3://bucket/key: %q", uri)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

func IsS3(uri string) bool {
	return strings.HasPrefix(uri, s3Scheme)
}
