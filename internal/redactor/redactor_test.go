package redactor

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terratensor/pdfredact/internal/document"
	"github.com/terratensor/pdfredact/internal/errs"
	"github.com/terratensor/pdfredact/internal/matcher"
	"github.com/terratensor/pdfredact/internal/storage"
)

type fakeSource struct{ data []byte }

func (f fakeSource) Fetch(context.Context, string, string) ([]byte, error) { return f.data, nil }

type fakeExtractor struct {
	lines  []document.TextLine
	err    error
	called bool
}

func (f *fakeExtractor) Extract(context.Context, string, string) ([]document.TextLine, error) {
	f.called = true
	return f.lines, f.err
}

type fakeDetector struct {
	spans []document.PiiSpan
	text  string
}

func (f *fakeDetector) Detect(_ context.Context, text string) ([]document.PiiSpan, error) {
	f.text = text
	return f.spans, nil
}

type fakeRenderer struct {
	checkErr  error
	renderErr error
	regions   []document.Region
}

func (f *fakeRenderer) Check([]byte) error { return f.checkErr }

func (f *fakeRenderer) Render(pdf []byte, regions []document.Region) ([]byte, error) {
	f.regions = regions
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return append([]byte("redacted:"), pdf...), nil
}

type fakeSink struct{ written []byte }

func (f *fakeSink) Write(_ context.Context, data []byte) error {
	f.written = data
	return nil
}

func (f *fakeSink) String() string { return "memory" }

var (
	nameBox = document.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.3, Height: 0.02}
	ssnBox  = document.BoundingBox{Left: 0.1, Top: 0.15, Width: 0.3, Height: 0.02}
)

func newRedactor(ex *fakeExtractor, det *fakeDetector, rend *fakeRenderer, sink *fakeSink) (*Redactor, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return &Redactor{
		Source:    fakeSource{data: []byte("%PDF")},
		Extractor: ex,
		Detector:  det,
		Matcher:   matcher.New(matcher.ModeSubstring),
		Renderer:  rend,
		Sink:      sink,
		Log:       log,
	}, hook
}

func TestRunEndToEnd(t *testing.T) {
	ex := &fakeExtractor{lines: []document.TextLine{
		{Text: "Name: John Smith,", Page: 1, Box: nameBox},
		{Text: "SSN: 123-45-6789", Page: 1, Box: ssnBox},
	}}
	det := &fakeDetector{spans: []document.PiiSpan{
		{Begin: 6, End: 16, Category: "NAME"},
		{Begin: 23, End: 34, Category: "SSN"},
	}}
	rend := &fakeRenderer{}
	sink := &fakeSink{}
	r, hook := newRedactor(ex, det, rend, sink)

	report, err := r.Run(context.Background(), storage.Location{Bucket: "bucketname", Key: "sub/doc.pdf"})
	require.NoError(t, err)

	assert.Equal(t, "Name: John Smith, SSN: 123-45-6789", det.text)
	assert.Equal(t, []document.Region{
		{Page: 1, Box: nameBox, Category: "NAME"},
		{Page: 1, Box: ssnBox, Category: "SSN"},
	}, rend.regions)
	assert.Equal(t, []byte("redacted:%PDF"), sink.written)

	assert.Equal(t, 2, report.Lines)
	assert.Equal(t, 2, report.Spans)
	assert.Equal(t, 2, report.Regions)
	assert.Zero(t, report.Unmatched)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "s3://bucketname/sub/doc.pdf", report.Source)

	for _, e := range hook.AllEntries() {
		assert.NotContains(t, e.Message, "John")
		for _, v := range e.Data {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "John Smith")
			}
		}
	}
}

func TestRunReportsUnmatchedSpans(t *testing.T) {
	ex := &fakeExtractor{lines: []document.TextLine{
		{Text: "Contact John", Page: 1},
		{Text: "Smith today", Page: 1},
	}}
	det := &fakeDetector{spans: []document.PiiSpan{{Begin: 8, End: 18, Category: "NAME"}}}
	rend := &fakeRenderer{}
	sink := &fakeSink{}
	r, hook := newRedactor(ex, det, rend, sink)

	report, err := r.Run(context.Background(), storage.Location{Bucket: "b", Key: "k"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Unmatched)
	assert.Zero(t, report.Regions)
	assert.Empty(t, rend.regions)
	assert.NotNil(t, sink.written)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, "NAME", e.Data["category"])
		}
	}
	assert.True(t, warned)
}

func TestRunStopsBeforeExtractionOnBadInput(t *testing.T) {
	ex := &fakeExtractor{}
	rend := &fakeRenderer{checkErr: errs.MalformedInput("check", "not a pdf", nil)}
	sink := &fakeSink{}
	r, _ := newRedactor(ex, &fakeDetector{}, rend, sink)

	_, err := r.Run(context.Background(), storage.Location{Bucket: "b", Key: "k"})
	assert.True(t, errors.Is(err, errs.ErrMalformedInput))
	assert.False(t, ex.called)
	assert.Nil(t, sink.written)
}

func TestRunJobFailedWritesNothing(t *testing.T) {
	ex := &fakeExtractor{err: errs.JobFailed("text detection", "job 1: FAILED")}
	sink := &fakeSink{}
	r, _ := newRedactor(ex, &fakeDetector{}, &fakeRenderer{}, sink)

	_, err := r.Run(context.Background(), storage.Location{Bucket: "b", Key: "k"})
	assert.True(t, errors.Is(err, errs.ErrJobFailed))
	assert.Nil(t, sink.written)
}

func TestRunOutOfRangeWritesNothing(t *testing.T) {
	ex := &fakeExtractor{lines: []document.TextLine{{Text: "John", Page: 9}}}
	det := &fakeDetector{spans: []document.PiiSpan{{Begin: 0, End: 4}}}
	rend := &fakeRenderer{renderErr: errs.OutOfRange("render", "page 9")}
	sink := &fakeSink{}
	r, _ := newRedactor(ex, det, rend, sink)

	_, err := r.Run(context.Background(), storage.Location{Bucket: "b", Key: "k"})
	assert.True(t, errors.Is(err, errs.ErrOutOfRange))
	assert.Nil(t, sink.written)
}
