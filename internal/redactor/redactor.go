package redactor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/terratensor/pdfredact/internal/document"
	"github.com/terratensor/pdfredact/internal/matcher"
	"github.com/terratensor/pdfredact/internal/storage"
)

type Source interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

type LineExtractor interface {
	Extract(ctx context.Context, bucket, key string) ([]document.TextLine, error)
}

type PIIDetector interface {
	Detect(ctx context.Context, text string) ([]document.PiiSpan, error)
}

type SpanMatcher interface {
	Match(text document.FullText, spans []document.PiiSpan, lines []document.TextLine) (matcher.Result, error)
}

type Renderer interface {
	Check(pdf []byte) error
	Render(pdf []byte, regions []document.Region) ([]byte, error)
}

// Redactor последовательно проводит документ через все этапы.
type Redactor struct {
	Source    Source
	Extractor LineExtractor
	Detector  PIIDetector
	Matcher   SpanMatcher
	Renderer  Renderer
	Sink      storage.Sink
	Log       logrus.FieldLogger
}

// Report - итог одного запуска. Текст документа сюда не попадает.
type Report struct {
	RunID     string
	Source    string
	Output    string
	Lines     int
	Spans     int
	Regions   int
	Unmatched int
	Duration  time.Duration
}

// Run выполняет все этапы. Результат записывается только если все этапы прошли успешно.
func (r *Redactor) Run(ctx context.Context, loc storage.Location) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString(), Source: loc.String(), Output: r.Sink.String()}

	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"run_id": report.RunID, "source": report.Source})

	pdf, err := r.Source.Fetch(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return report, fmt.Errorf("fetch document: %w", err)
	}
	log.WithField("bytes", len(pdf)).Info("document fetched")

	if err := r.Renderer.Check(pdf); err != nil {
		return report, fmt.Errorf("check document: %w", err)
	}

	lines, err := r.Extractor.Extract(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return report, fmt.Errorf("extract lines: %w", err)
	}
	report.Lines = len(lines)

	text := document.Join(lines)
	log.WithFields(logrus.Fields{"lines": len(lines), "chars": text.Len()}).Info("full text assembled")

	spans, err := r.Detector.Detect(ctx, text.String())
	if err != nil {
		return report, fmt.Errorf("detect pii: %w", err)
	}
	report.Spans = len(spans)

	matched, err := r.Matcher.Match(text, spans, lines)
	if err != nil {
		return report, fmt.Errorf("match spans: %w", err)
	}
	report.Regions = len(matched.Regions)
	report.Unmatched = len(matched.Unmatched)
	for _, span := range matched.Unmatched {
		// Сам текст фрагмента не логируем.
		log.WithFields(logrus.Fields{
			"category": span.Category,
			"begin":    span.Begin,
			"end":      span.End,
		}).Warn("pii span not found in any single line, left unredacted")
	}

	redacted, err := r.Renderer.Render(pdf, matched.Regions)
	if err != nil {
		return report, fmt.Errorf("render redactions: %w", err)
	}

	if err := r.Sink.Write(ctx, redacted); err != nil {
		return report, fmt.Errorf("write output: %w", err)
	}

	report.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"output":    report.Output,
		"spans":     report.Spans,
		"regions":   report.Regions,
		"unmatched": report.Unmatched,
		"duration":  report.Duration.String(),
	}).Info("redacted document saved")
	return report, nil
}
