package render

import (
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/terratensor/pdfredact/internal/errs"
)

const pdfMIME = "application/pdf"

func init() {
	// pdfcpu не должен создавать каталог настроек в домашней папке.
	api.DisableConfigDir()
}

// Check сначала определяет тип содержимого, затем проверяет структуру PDF.
func Check(rs io.ReadSeeker) error {
	mt, err := mimetype.DetectReader(rs)
	if err != nil {
		return errs.MalformedInput("check", "read input", err)
	}
	if !mt.Is(pdfMIME) {
		return errs.MalformedInput("check", fmt.Sprintf("expected %s, got %s", pdfMIME, mt.String()), nil)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return errs.MalformedInput("check", "rewind input", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(rs, conf); err != nil {
		return errs.MalformedInput("check", "validate pdf", err)
	}
	return nil
}
