package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Sink сохраняет готовый документ целиком, перезаписывая существующий.
type Sink interface {
	Write(ctx context.Context, data []byte) error
	String() string
}

// NewSink выбирает приемник по адресу назначения.
// putter нужен только для адресов s3://.
func NewSink(dest string, putter PutObjectAPI) (Sink, error) {
	base := filepath.Base(dest)
	if IsS3(dest) {
		base = path.Base(dest)
	}
	ext := filepath.Ext(base)

	// Сжатый результат: .pdf.gz
	if ext == ".gz" {
		innerExt := filepath.Ext(strings.TrimSuffix(base, ext))
		inner, err := newInnerSink(dest, innerExt, putter)
		if err != nil {
			return nil, fmt.Errorf("unsupported inner output format: %s", innerExt)
		}
		return NewGzipSink(inner), nil
	}

	return newInnerSink(dest, ext, putter)
}

// newInnerSink создает приемник без учета .gz.
func newInnerSink(dest, ext string, putter PutObjectAPI) (Sink, error) {
	if ext != ".pdf" {
		return nil, fmt.Errorf("unsupported output format: %q", ext)
	}
	if !IsS3(dest) {
		return NewFileSink(dest), nil
	}
	if putter == nil {
		return nil, fmt.Errorf("s3 output %s requires an s3 client", dest)
	}
	loc, err := ParseLocation(dest)
	if err != nil {
		return nil, err
	}
	return NewS3Sink(putter, loc), nil
}
