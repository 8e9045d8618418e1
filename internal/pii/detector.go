package pii

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/sirupsen/logrus"

	"github.com/terratensor/pdfredact/internal/awserr"
	"github.com/terratensor/pdfredact/internal/document"
	"github.com/terratensor/pdfredact/internal/errs"
)

const DefaultLanguage = "en"

// API - метод Comprehend, который использует детектор.
type API interface {
	DetectPiiEntities(ctx context.Context, in *comprehend.DetectPiiEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectPiiEntitiesOutput, error)
}

type Options struct {
	Language string
	// MinScore отбрасывает сущности с меньшей уверенностью; 0 оставляет все.
	MinScore float64
	// Categories - допустимые типы сущностей (NAME, SSN, ...); пусто - все.
	Categories []string
}

// Detector находит PII во всем тексте одним вызовом Comprehend.
type Detector struct {
	api        API
	language   string
	minScore   float64
	categories map[string]struct{}
	log        logrus.FieldLogger
}

func NewDetector(api API, opts Options, log logrus.FieldLogger) *Detector {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Detector{api: api, language: opts.Language, minScore: opts.MinScore, log: log}
	if len(opts.Categories) > 0 {
		d.categories = make(map[string]struct{}, len(opts.Categories))
		for _, c := range opts.Categories {
			d.categories[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
		}
	}
	return d
}

func (d *Detector) Detect(ctx context.Context, text string) ([]document.PiiSpan, error) {
	// Comprehend отклоняет пустой текст.
	if text == "" {
		return nil, nil
	}

	out, err := d.api.DetectPiiEntities(ctx, &comprehend.DetectPiiEntitiesInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCode(d.language),
	})
	if err != nil {
		return nil, errs.Transient("detect pii entities", awserr.Describe(err))
	}

	spans := make([]document.PiiSpan, 0, len(out.Entities))
	skipped := 0
	for _, e := range out.Entities {
		span := document.PiiSpan{
			Begin:      int(aws.ToInt32(e.BeginOffset)),
			End:        int(aws.ToInt32(e.EndOffset)),
			Category:   string(e.Type),
			Confidence: float64(aws.ToFloat32(e.Score)),
		}
		if !d.keep(span) {
			skipped++
			continue
		}
		spans = append(spans, span)
	}

	d.log.WithFields(logrus.Fields{
		"entities": len(out.Entities),
		"kept":     len(spans),
		"skipped":  skipped,
	}).Info("pii entities detected")
	return spans, nil
}

func (d *Detector) keep(span document.PiiSpan) bool {
	if span.Confidence < d.minScore {
		return false
	}
	if d.categories == nil {
		return true
	}
	_, ok := d.categories[span.Category]
	return ok
}
