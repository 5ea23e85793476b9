//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/domain/port"
)

// Renderer рисует найденные зацепы и кодирует результат в PNG
type Renderer struct {
	params Params
}

func NewRenderer(params Params) *Renderer {
	return &Renderer{params: params}
}

// Render рисует зацепы в порядке результата: поздние перекрывают ранние.
func (r *Renderer) Render(imageData []byte, result entity.DetectionResult, mode entity.BlendMode) ([]byte, error) {
	src, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var canvas gocv.Mat
	switch mode {
	case entity.BlendOpaque:
		canvas = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), src.Rows(), src.Cols(), gocv.MatTypeCV8UC3)
	case entity.BlendOverlay:
		canvas = src.Clone()
	default:
		return nil, fmt.Errorf("unknown blend mode %q", mode)
	}
	defer canvas.Close()

	for _, group := range result.Groups() {
		for _, hold := range group.Holds {
			c := rgba(hold.Color)
			if mode == entity.BlendOpaque {
				r.fill(&canvas, hold, c)
				r.outline(&canvas, hold, white)
				continue
			}

			layer := canvas.Clone()
			r.fill(&layer, hold, c)
			gocv.AddWeighted(layer, r.params.OverlayAlpha, canvas, 1-r.params.OverlayAlpha, 0, &canvas)
			layer.Close()
			r.outline(&canvas, hold, c)
		}
	}

	return encodePNG(canvas)
}

func (r *Renderer) fill(canvas *gocv.Mat, hold entity.Hold, c color.RGBA) {
	if r.useBox(hold) {
		gocv.Rectangle(canvas, hold.Bounds(), c, -1)
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{hold.Contour.ImagePoints()})
	defer pv.Close()
	gocv.FillPoly(canvas, pv, c)
}

func (r *Renderer) outline(canvas *gocv.Mat, hold entity.Hold, c color.RGBA) {
	if r.useBox(hold) {
		gocv.Rectangle(canvas, hold.Bounds(), c, r.params.OutlineThickness)
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{hold.Contour.ImagePoints()})
	defer pv.Close()
	gocv.DrawContours(canvas, pv, 0, c, r.params.OutlineThickness)
}

// useBox контур из одной-двух точек не закрашивается, рисуем прямоугольник
func (r *Renderer) useBox(hold entity.Hold) bool {
	return r.params.Shape == ShapeBox || len(hold.Contour) < 3
}

func rgba(c entity.RGB) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
}

// Проверка реализации интерфейса
var _ port.Visualizer = (*Renderer)(nil)
