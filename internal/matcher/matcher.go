package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/terratensor/pdfredact/internal/document"
	"github.com/terratensor/pdfredact/internal/errs"
)

// Mode выбирает способ сопоставления фрагментов со строками.
type Mode string

const (
	// ModeSubstring закрашивает каждую строку, содержащую текст фрагмента.
	// Повторяющийся текст закрашивается везде, фрагменты через границу строк не находятся.
	ModeSubstring Mode = "substring"
	// ModePositional выбирает строки по пересечению смещений фрагмента с диапазоном строки.
	ModePositional Mode = "positional"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSubstring, ModePositional:
		return Mode(s), nil
	case "":
		return ModeSubstring, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Result содержит найденные регионы и фрагменты без единого совпадения.
type Result struct {
	Regions   []document.Region
	Unmatched []document.PiiSpan
}

type Matcher struct {
	mode Mode
}

func New(mode Mode) *Matcher {
	if mode == "" {
		mode = ModeSubstring
	}
	return &Matcher{mode: mode}
}

func (m *Matcher) Mode() Mode {
	return m.mode
}

// Match сопоставляет фрагменты PII со строками. Дубликаты не удаляются.
func (m *Matcher) Match(text document.FullText, spans []document.PiiSpan, lines []document.TextLine) (Result, error) {
	var res Result
	for _, span := range spans {
		var (
			found []document.Region
			err   error
		)
		switch m.mode {
		case ModePositional:
			found, err = matchPositional(text, span, lines)
		default:
			found, err = matchSubstring(text, span, lines)
		}
		if err != nil {
			return Result{}, err
		}
		if len(found) == 0 {
			res.Unmatched = append(res.Unmatched, span)
			continue
		}
		res.Regions = append(res.Regions, found...)
	}
	return res, nil
}

func matchSubstring(text document.FullText, span document.PiiSpan, lines []document.TextLine) ([]document.Region, error) {
	piiText, err := text.Slice(span)
	if err != nil {
		return nil, errs.MalformedInput("match", "pii span", err)
	}

	var out []document.Region
	for _, line := range lines {
		if strings.Contains(line.Text, piiText) {
			out = append(out, regionFor(line, span))
		}
	}
	return out, nil
}

func matchPositional(text document.FullText, span document.PiiSpan, lines []document.TextLine) ([]document.Region, error) {
	if _, err := text.Slice(span); err != nil {
		return nil, errs.MalformedInput("match", "pii span", err)
	}
	if text.Lines() != len(lines) {
		return nil, errs.MalformedInput("match", fmt.Sprintf("full text built from %d lines, got %d", text.Lines(), len(lines)), nil)
	}

	// Первая строка, которая заканчивается после начала фрагмента.
	first := sort.Search(len(lines), func(i int) bool {
		_, end := text.LineRange(i)
		return end > span.Begin
	})

	var out []document.Region
	for i := first; i < len(lines); i++ {
		start, end := text.LineRange(i)
		if start >= span.End {
			break
		}
		// Пустая строка или пробел-разделитель не дают совпадения.
		if end <= span.Begin || start == end {
			continue
		}
		out = append(out, regionFor(lines[i], span))
	}
	return out, nil
}

func regionFor(line document.TextLine, span document.PiiSpan) document.Region {
	return document.Region{
		Page:     line.Page,
		Box:      line.Box,
		Category: span.Category,
	}
}
