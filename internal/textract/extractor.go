package textract

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/terratensor/pdfredact/internal/document"
	"github.com/terratensor/pdfredact/internal/errs"
)

// JobStatus - состояние задания распознавания на стороне сервиса.
type JobStatus string

const (
	StatusRunning        JobStatus = "RUNNING"
	StatusSucceeded      JobStatus = "SUCCEEDED"
	StatusPartialSuccess JobStatus = "PARTIAL_SUCCESS"
	StatusFailed         JobStatus = "FAILED"
)

// BlockTypeLine - единственный тип блока, который попадает в результат.
const BlockTypeLine = "LINE"

const DefaultPollInterval = 5 * time.Second

// Block - элемент результата распознавания.
type Block struct {
	Type string
	Text string
	Page int
	Box  document.BoundingBox
}

// Page - одна порция результатов. Пустой NextToken означает конец.
type Page struct {
	Blocks    []Block
	NextToken string
}

// JobAPI описывает асинхронный сервис распознавания текста.
type JobAPI interface {
	Start(ctx context.Context, bucket, key string) (jobID string, err error)
	Status(ctx context.Context, jobID string) (status JobStatus, message string, err error)
	FetchPage(ctx context.Context, jobID, token string) (Page, error)
}

// SleepFunc ждет d или отмены контекста.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Options struct {
	PollInterval time.Duration
	// MaxPolls ограничивает число проверок статуса; 0 - без ограничения.
	MaxPolls int
	Sleep    SleepFunc
}

type Extractor struct {
	api  JobAPI
	opts Options
	log  logrus.FieldLogger
}

func NewExtractor(api JobAPI, opts Options, log logrus.FieldLogger) *Extractor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Extractor{api: api, opts: opts, log: log}
}

// Extract запускает задание, дожидается его завершения и возвращает строки
// в порядке, в котором их вернул сервис.
func (e *Extractor) Extract(ctx context.Context, bucket, key string) ([]document.TextLine, error) {
	jobID, err := e.api.Start(ctx, bucket, key)
	if err != nil {
		return nil, errs.Transient("start text detection", err)
	}
	log := e.log.WithField("job_id", jobID)
	log.Info("text detection job started")

	if err := e.wait(ctx, jobID, log); err != nil {
		return nil, err
	}

	var lines []document.TextLine
	pages := 0
	for page, err := range e.Pages(ctx, jobID) {
		if err != nil {
			return nil, err
		}
		pages++
		lines = append(lines, Lines(page.Blocks)...)
	}
	log.WithFields(logrus.Fields{"result_pages": pages, "lines": len(lines)}).Info("text detection results fetched")
	return lines, nil
}

type jobState int

const (
	stateSubmitted jobState = iota
	statePolling
	stateSucceeded
	stateFailed
)

// wait проверяет статус сразу, а перед каждой следующей проверкой выжидает PollInterval.
func (e *Extractor) wait(ctx context.Context, jobID string, log logrus.FieldLogger) error {
	state := stateSubmitted
	for polls := 1; ; polls++ {
		if state == statePolling {
			if err := e.opts.Sleep(ctx, e.opts.PollInterval); err != nil {
				return errs.Transient("wait for text detection", err)
			}
		}

		status, message, err := e.api.Status(ctx, jobID)
		if err != nil {
			return errs.Transient("get text detection status", err)
		}

		switch status {
		case StatusSucceeded:
			state = stateSucceeded
		case StatusPartialSuccess:
			log.WithField("message", message).Warn("text detection finished with partial success")
			state = stateSucceeded
		case StatusFailed:
			state = stateFailed
		default:
			state = statePolling
		}

		switch state {
		case stateSucceeded:
			log.WithField("polls", polls).Info("text detection job succeeded")
			return nil
		case stateFailed:
			return errs.JobFailed("text detection", fmt.Sprintf("job %s: %s %s", jobID, status, message))
		}

		if e.opts.MaxPolls > 0 && polls >= e.opts.MaxPolls {
			return errs.Transient("wait for text detection",
				fmt.Errorf("job %s still %s after %d polls", jobID, status, polls))
		}
		log.WithField("status", status).Debug("waiting for text detection job to complete")
	}
}

// Pages лениво обходит результаты задания по NextToken.
// Каждый новый обход начинается с первой порции.
func (e *Extractor) Pages(ctx context.Context, jobID string) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		token := ""
		for {
			page, err := e.api.FetchPage(ctx, jobID, token)
			if err != nil {
				yield(Page{}, errs.Transient("get text detection results", err))
				return
			}
			if !yield(page, nil) {
				return
			}
			if page.NextToken == "" {
				return
			}
			token = page.NextToken
		}
	}
}

// Lines оставляет только блоки-строки.
func Lines(blocks []Block) []document.TextLine {
	var out []document.TextLine
	for _, b := range blocks {
		if b.Type != BlockTypeLine {
			continue
		}
		out = append(out, document.TextLine{Text: b.Text, Page: b.Page, Box: b.Box})
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
