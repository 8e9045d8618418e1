package render

import "github.com/terratensor/pdfredact/internal/document"

// Rect - прямоугольник в пунктах, начало координат в левом нижнем углу страницы.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ToPageRect переводит долевые координаты (начало сверху слева) в координаты страницы.
func ToPageRect(box document.BoundingBox, pageWidth, pageHeight float64) Rect {
	return Rect{
		X:      box.Left * pageWidth,
		Y:      (1-box.Top)*pageHeight - box.Height*pageHeight,
		Width:  box.Width * pageWidth,
		Height: box.Height * pageHeight,
	}
}
