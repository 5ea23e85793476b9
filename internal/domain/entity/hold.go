package entity

import (
	"encoding/json"
	"fmt"
	"image"
)

// Point координаты в пикселях
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size размер ограничивающего прямоугольника
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RGB цвет в порядке r, g, b
type RGB [3]uint8

// Contour замкнутая граница области
type Contour []Point

// MarshalJSON кодирует контур как [[x,y],...]
func (c Contour) MarshalJSON() ([]byte, error) {
	pairs := make([][2]int, len(c))
	for i, p := range c {
		pairs[i] = [2]int{p.X, p.Y}
	}
	return json.Marshal(pairs)
}

func (c *Contour) UnmarshalJSON(data []byte) error {
	var pairs [][2]int
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("decode contour: %w", err)
	}
	out := make(Contour, len(pairs))
	for i, p := range pairs {
		out[i] = Point{X: p[0], Y: p[1]}
	}
	*c = out
	return nil
}

// ImagePoints переводит контур в []image.Point для отрисовки
func (c Contour) ImagePoints() []image.Point {
	pts := make([]image.Point, len(c))
	for i, p := range c {
		pts[i] = image.Pt(p.X, p.Y)
	}
	return pts
}

// ContourFromPoints строит контур из точек OpenCV
func ContourFromPoints(pts []image.Point) Contour {
	c := make(Contour, len(pts))
	for i, p := range pts {
		c[i] = Point{X: p.X, Y: p.Y}
	}
	return c
}

// Hold найденный зацеп
type Hold struct {
	Label    ColorLabel `json:"-"`
	Position Point      `json:"position"` // центр масс маски
	Size     Size       `json:"size"`
	Contour  Contour    `json:"contour"`
	Color    RGB        `json:"color"` // средний цвет без учёта мела
}

// Bounds ограничивающий прямоугольник контура. Для вырожденного контура
// (меньше трёх точек) строится прямоугольник размера Size с центром в Position.
func (h Hold) Bounds() image.Rectangle {
	if len(h.Contour) < 3 {
		x0 := h.Position.X - h.Size.Width/2
		y0 := h.Position.Y - h.Size.Height/2
		return image.Rect(x0, y0, x0+h.Size.Width, y0+h.Size.Height)
	}
	minX, minY := h.Contour[0].X, h.Contour[0].Y
	maxX, maxY := minX, minY
	for _, p := range h.Contour[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
