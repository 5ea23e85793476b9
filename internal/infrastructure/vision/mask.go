//go:build gocv
// +build gocv

package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Mask бинарная маска 0/255 (CV_8UC1). Все операции возвращают новую маску,
// исходная не меняется; освобождать через Close.
type Mask struct {
	mat gocv.Mat
}

// NewMask создаёт пустую маску
func NewMask(rows, cols int) *Mask {
	return &Mask{mat: gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8U)}
}

// FullMask создаёт маску, где выставлены все пиксели
func FullMask(rows, cols int) *Mask {
	return &Mask{mat: gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), rows, cols, gocv.MatTypeCV8U)}
}

// maskFromContour заполняет контур; точки смещаются на -offset
func maskFromContour(rows, cols int, pts []image.Point, offset image.Point) *Mask {
	m := NewMask(rows, cols)
	if len(pts) == 0 {
		return m
	}
	local := make([]image.Point, len(pts))
	for i, p := range pts {
		local[i] = p.Sub(offset)
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{local})
	defer pv.Close()
	gocv.DrawContours(&m.mat, pv, 0, white, -1)
	return m
}

func (m *Mask) Rows() int { return m.mat.Rows() }
func (m *Mask) Cols() int { return m.mat.Cols() }

// Mat даёт доступ к матрице только для чтения
func (m *Mask) Mat() gocv.Mat { return m.mat }

// Close освобождает память OpenCV
func (m *Mask) Close() error {
	return m.mat.Close()
}

func (m *Mask) Clone() *Mask {
	return &Mask{mat: m.mat.Clone()}
}

// Sub копирует прямоугольную часть маски
func (m *Mask) Sub(r image.Rectangle) *Mask {
	view := m.mat.Region(r)
	defer view.Close()
	return &Mask{mat: view.Clone()}
}

func (m *Mask) Union(other *Mask) *Mask {
	out := gocv.NewMat()
	gocv.BitwiseOr(m.mat, other.mat, &out)
	return &Mask{mat: out}
}

func (m *Mask) Intersect(other *Mask) *Mask {
	out := gocv.NewMat()
	gocv.BitwiseAnd(m.mat, other.mat, &out)
	return &Mask{mat: out}
}

// Count число выставленных пикселей
func (m *Mask) Count() int {
	return gocv.CountNonZero(m.mat)
}

func (m *Mask) IsEmpty() bool {
	return m.Count() == 0
}

// At пиксель (x, y) выставлен
func (m *Mask) At(x, y int) bool {
	return m.mat.GetUCharAt(y, x) > 0
}

func (m *Mask) Dilated(shape gocv.MorphShape, size int) *Mask {
	kernel := structuringElement(shape, size)
	defer kernel.Close()
	out := gocv.NewMat()
	gocv.Dilate(m.mat, &out, kernel)
	return &Mask{mat: out}
}

func (m *Mask) Eroded(shape gocv.MorphShape, size int) *Mask {
	kernel := structuringElement(shape, size)
	defer kernel.Close()
	out := gocv.NewMat()
	gocv.Erode(m.mat, &out, kernel)
	return &Mask{mat: out}
}

// Opened эрозия, затем дилатация: убирает мелкие пятна
func (m *Mask) Opened(shape gocv.MorphShape, size int) *Mask {
	return m.morph(gocv.MorphOpen, shape, size)
}

// Closed дилатация, затем эрозия: заполняет разрывы
func (m *Mask) Closed(shape gocv.MorphShape, size int) *Mask {
	return m.morph(gocv.MorphClose, shape, size)
}

func (m *Mask) morph(op gocv.MorphType, shape gocv.MorphShape, size int) *Mask {
	kernel := structuringElement(shape, size)
	defer kernel.Close()
	out := gocv.NewMat()
	gocv.MorphologyEx(m.mat, &out, op, kernel)
	return &Mask{mat: out}
}

// Regions внешние контуры маски в порядке обхода OpenCV, со смещением offset
func (m *Mask) Regions(offset image.Point) []Region {
	return findRegions(m.mat, offset)
}

func structuringElement(shape gocv.MorphShape, size int) gocv.Mat {
	if size < 1 {
		size = 1
	}
	return gocv.GetStructuringElement(shape, image.Pt(size, size))
}

// Region замкнутая внешняя граница связной области
type Region struct {
	Points    []image.Point
	Area      float64
	Perimeter float64
}

// Bounds ограничивающий прямоугольник
func (r Region) Bounds() image.Rectangle {
	if len(r.Points) == 0 {
		return image.Rectangle{}
	}
	pv := gocv.NewPointVectorFromPoints(r.Points)
	defer pv.Close()
	return gocv.BoundingRect(pv)
}

func findRegions(binary gocv.Mat, offset image.Point) []Region {
	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		pts := c.ToPoints()
		for j := range pts {
			pts[j] = pts[j].Add(offset)
		}
		regions = append(regions, Region{
			Points:    pts,
			Area:      gocv.ContourArea(c),
			Perimeter: gocv.ArcLength(c, true),
		})
	}
	return regions
}
