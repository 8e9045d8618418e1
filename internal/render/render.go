package render

import (
	"bytes"

	"github.com/sirupsen/logrus"

	"github.com/terratensor/pdfredact/internal/document"
	"github.com/terratensor/pdfredact/internal/errs"
)

// Canvas - загруженный в память документ, на котором можно закрашивать прямоугольники.
// Страницы нумеруются с единицы.
type Canvas interface {
	PageCount() int
	PageSize(page int) (width, height float64, err error)
	FillRect(page int, r Rect) error
	Save() ([]byte, error)
}

// OpenFunc загружает документ; ошибка означает поврежденный PDF.
type OpenFunc func(pdf []byte) (Canvas, error)

type Renderer struct {
	open OpenFunc
	log  logrus.FieldLogger
}

// New создает рендерер поверх unipdf.
func New(log logrus.FieldLogger) *Renderer {
	return NewWithOpener(OpenUnipdf, log)
}

func NewWithOpener(open OpenFunc, log logrus.FieldLogger) *Renderer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Renderer{open: open, log: log}
}

// Render закрашивает регионы черным и возвращает новый документ.
// Все номера страниц проверяются до начала рисования.
func (r *Renderer) Render(pdf []byte, regions []document.Region) ([]byte, error) {
	canvas, err := r.open(pdf)
	if err != nil {
		return nil, errs.MalformedInput("render", "load pdf", err)
	}

	pages := canvas.PageCount()
	for i, region := range regions {
		if region.Page < 1 || region.Page > pages {
			return nil, errs.OutOfRange("render",
				"region %d (%s) references page %d, document has %d pages", i, region.Category, region.Page, pages)
		}
	}

	for _, region := range regions {
		w, h, err := canvas.PageSize(region.Page)
		if err != nil {
			return nil, errs.MalformedInput("render", "page size", err)
		}
		if err := canvas.FillRect(region.Page, ToPageRect(region.Box, w, h)); err != nil {
			return nil, errs.MalformedInput("render", "fill rect", err)
		}
	}

	out, err := canvas.Save()
	if err != nil {
		if errs.KindOf(err) != 0 {
			return nil, err
		}
		return nil, errs.MalformedInput("render", "save pdf", err)
	}
	r.log.WithFields(logrus.Fields{"pages": pages, "regions": len(regions), "bytes": len(out)}).Info("redactions drawn")
	return out, nil
}

// Check проверяет входной документ до запуска распознавания.
func (r *Renderer) Check(pdf []byte) error {
	return Check(bytes.NewReader(pdf))
}
