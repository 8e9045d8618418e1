package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// BoundingBox задает прямоугольник строки в долях размера страницы,
// начало координат в левом верхнем углу.
type BoundingBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// TextLine - одна распознанная строка текста.
type TextLine struct {
	Text string
	Page int // с единицы
	Box  BoundingBox
}

// PiiSpan - фрагмент полного текста, помеченный классификатором.
// Смещения считаются в рунах.
type PiiSpan struct {
	Begin      int
	End        int
	Category   string
	Confidence float64
}

// Region - строка, которую нужно закрасить. Геометрия не преобразуется.
type Region struct {
	Page     int
	Box      BoundingBox
	Category string
}

// FullText - строки, склеенные через один пробел, в исходном порядке.
type FullText struct {
	text   []rune
	starts []int
	ends   []int
}

const Separator = " "

func Join(lines []TextLine) FullText {
	var b strings.Builder
	ft := FullText{
		starts: make([]int, len(lines)),
		ends:   make([]int, len(lines)),
	}
	pos := 0
	for i, line := range lines {
		if i > 0 {
			b.WriteString(Separator)
			pos += utf8.RuneCountInString(Separator)
		}
		ft.starts[i] = pos
		b.WriteString(line.Text)
		pos += utf8.RuneCountInString(line.Text)
		ft.ends[i] = pos
	}
	ft.text = []rune(b.String())
	return ft
}

func (f FullText) String() string {
	return string(f.text)
}

// Len возвращает длину текста в рунах.
func (f FullText) Len() int {
	return len(f.text)
}

// Slice возвращает подстроку span, проверяя 0 <= Begin < End <= Len.
func (f FullText) Slice(span PiiSpan) (string, error) {
	if span.Begin < 0 || span.Begin >= span.End || span.End > len(f.text) {
		return "", fmt.Errorf("span [%d,%d) outside text of length %d", span.Begin, span.End, len(f.text))
	}
	return string(f.text[span.Begin:span.End]), nil
}

// LineRange возвращает полуинтервал [start, end) строки i внутри полного текста.
func (f FullText) LineRange(i int) (start, end int) {
	return f.starts[i], f.ends[i]
}

func (f FullText) Lines() int {
	return len(f.starts)
}
