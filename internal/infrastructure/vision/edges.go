//go:build gocv
// +build gocv

package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// EdgeExtractor выделяет замкнутые области по границам яркости
type EdgeExtractor struct {
	params Params
}

func NewEdgeExtractor(params Params) *EdgeExtractor {
	return &EdgeExtractor{params: params}
}

// Extract возвращает внешние контуры, прошедшие фильтр площади и округлости,
// в порядке обхода FindContours.
func (e *EdgeExtractor) Extract(img gocv.Mat) []Region {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	// Сглаживаем текстуру стены, сохраняя края зацепов.
	smooth := gocv.NewMat()
	defer smooth.Close()
	gocv.BilateralFilter(gray, &smooth, e.params.BilateralDiameter, e.params.BilateralSigmaColor, e.params.BilateralSigmaSpace)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(smooth, &edges, e.params.CannyLow, e.params.CannyHigh)

	kernel := structuringElement(gocv.MorphRect, e.params.EdgeDilateKernel)
	defer kernel.Close()
	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(edges, &dilated, kernel)

	candidates := findRegions(dilated, image.Point{})
	regions := make([]Region, 0, len(candidates))
	for _, r := range candidates {
		if !e.params.AcceptsShape(r.Area, r.Perimeter) {
			continue
		}
		regions = append(regions, r)
	}
	return regions
}
