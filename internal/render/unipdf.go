package render

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/terratensor/pdfredact/internal/errs"
)

// Без ключа unipdf читает документы, но отказывается их записывать.
var licensed atomic.Bool

// SetLicenseKey включает лицензию unipdf. Пустой ключ ничего не меняет.
func SetLicenseKey(key string) error {
	if key == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("set unipdf license: %w", err)
	}
	licensed.Store(true)
	return nil
}

// unipdfCanvas копит прямоугольники и рисует их при сохранении,
// потому что creator рисует только на последней добавленной странице.
type unipdfCanvas struct {
	pages []*model.PdfPage
	rects map[int][]Rect
}

// OpenUnipdf читает PDF и все его страницы.
func OpenUnipdf(pdf []byte) (Canvas, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(pdf))
	if err != nil {
		return nil, err
	}

	encrypted, err := reader.IsEncrypted()
	if err != nil {
		return nil, err
	}
	if encrypted {
		ok, err := reader.Decrypt([]byte(""))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("pdf is password protected")
		}
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, err
	}

	c := &unipdfCanvas{
		pages: make([]*model.PdfPage, 0, numPages),
		rects: make(map[int][]Rect),
	}
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		c.pages = append(c.pages, page)
	}
	return c, nil
}

func (c *unipdfCanvas) PageCount() int {
	return len(c.pages)
}

func (c *unipdfCanvas) PageSize(page int) (float64, float64, error) {
	if page < 1 || page > len(c.pages) {
		return 0, 0, fmt.Errorf("page %d out of range", page)
	}
	mb, err := c.pages[page-1].GetMediaBox()
	if err != nil {
		return 0, 0, err
	}
	return mb.Width(), mb.Height(), nil
}

func (c *unipdfCanvas) FillRect(page int, r Rect) error {
	if page < 1 || page > len(c.pages) {
		return fmt.Errorf("page %d out of range", page)
	}
	c.rects[page] = append(c.rects[page], r)
	return nil
}

func (c *unipdfCanvas) Save() ([]byte, error) {
	if !licensed.Load() {
		return nil, errs.Config("unidoc license key is not set")
	}

	cr := creator.New()
	for i, page := range c.pages {
		if err := cr.AddPage(page); err != nil {
			return nil, fmt.Errorf("add page %d: %w", i+1, err)
		}

		rects := c.rects[i+1]
		if len(rects) == 0 {
			continue
		}
		_, height, err := c.PageSize(i + 1)
		if err != nil {
			return nil, err
		}
		for _, r := range rects {
			rect := cr.NewRectangle(r.X, creatorY(r, height), r.Width, r.Height)
			rect.SetFillColor(creator.ColorBlack)
			rect.SetBorderColor(creator.ColorBlack)
			if err := cr.Draw(rect); err != nil {
				return nil, fmt.Errorf("draw on page %d: %w", i+1, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := cr.Write(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// creatorY переводит нижний край прямоугольника в верхний:
// в creator начало координат сверху слева.
func creatorY(r Rect, pageHeight float64) float64 {
	return pageHeight - r.Y - r.Height
}
