package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
)

// GzipSink сжимает документ и передает его внутреннему приемнику.
type GzipSink struct {
	inner Sink // Приемник для сжатых данных
}

func NewGzipSink(inner Sink) *GzipSink {
	return &GzipSink{
		inner: inner,
	}
}

func (s *GzipSink) String() string {
	return s.inner.String()
}

func (s *GzipSink) Write(ctx context.Context, data []byte) error {
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	if _, err := gzWriter.Write(data); err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("gzip: %w", err)
	}

	return s.inner.Write(ctx, buf.Bytes())
}
