package vision

import (
	"fmt"
	"math"

	"climbing-holds/internal/domain/entity"
)

// HSVRange включающий диапазон в шкале OpenCV: H 0..180, S и V 0..255
type HSVRange struct {
	Lower [3]float64
	Upper [3]float64
}

// Contains проверяет попадание точки HSV в диапазон
func (r HSVRange) Contains(h, s, v float64) bool {
	return h >= r.Lower[0] && h <= r.Upper[0] &&
		s >= r.Lower[1] && s <= r.Upper[1] &&
		v >= r.Lower[2] && v <= r.Upper[2]
}

// LabelSpec диапазоны цвета и цвет для отрисовки
type LabelSpec struct {
	Label   entity.ColorLabel
	Ranges  []HSVRange // объединяются; красный занимает оба края шкалы
	Display entity.RGB
}

// RenderShape чем закрашивать зацеп
type RenderShape string

const (
	ShapeContour RenderShape = "contour"
	ShapeBox     RenderShape = "box"
)

// Params неизменяемая конфигурация конвейера. Методы With* возвращают копию.
type Params struct {
	Labels []LabelSpec

	OpenKernel  int // удаление мелких пятен в цветовой маске
	CloseKernel int // заполнение разрывов в цветовой маске

	BilateralDiameter   int
	BilateralSigmaColor float64
	BilateralSigmaSpace float64
	CannyLow            float32
	CannyHigh           float32
	EdgeDilateKernel    int

	MinHoldArea    float64
	MinCircularity float64 // граница не включается
	MaxCircularity float64 // граница не включается

	MinOverlap         float64 // доля площади области, покрытая цветом
	ChalkValueMin      float64
	ChalkSaturationMax float64
	ChalkKernel        int // окрестность зацепа, в которой мел присоединяется к нему

	RectMargin        int
	GrabCutIterations int
	BackgroundKernel  int

	Shape            RenderShape
	OutlineThickness int
	OverlayAlpha     float64

	DominantColor    bool
	DominantClusters int
}

// DefaultParams возвращает параметры по умолчанию
func DefaultParams() Params {
	return Params{
		Labels: []LabelSpec{
			{Label: entity.LabelRed, Display: entity.RGB{255, 0, 0}, Ranges: []HSVRange{
				{Lower: [3]float64{0, 100, 100}, Upper: [3]float64{10, 255, 255}},
				{Lower: [3]float64{170, 100, 100}, Upper: [3]float64{180, 255, 255}},
			}},
			{Label: entity.LabelBlue, Display: entity.RGB{0, 0, 255}, Ranges: []HSVRange{
				{Lower: [3]float64{100, 100, 100}, Upper: [3]float64{130, 255, 255}},
			}},
			{Label: entity.LabelGreen, Display: entity.RGB{0, 255, 0}, Ranges: []HSVRange{
				{Lower: [3]float64{40, 100, 100}, Upper: [3]float64{80, 255, 255}},
			}},
			{Label: entity.LabelYellow, Display: entity.RGB{255, 255, 0}, Ranges: []HSVRange{
				{Lower: [3]float64{20, 100, 100}, Upper: [3]float64{30, 255, 255}},
			}},
			{Label: entity.LabelPurple, Display: entity.RGB{255, 0, 255}, Ranges: []HSVRange{
				{Lower: [3]float64{130, 100, 100}, Upper: [3]float64{150, 255, 255}},
			}},
			{Label: entity.LabelOrange, Display: entity.RGB{255, 165, 0}, Ranges: []HSVRange{
				{Lower: [3]float64{10, 100, 100}, Upper: [3]float64{20, 255, 255}},
			}},
			{Label: entity.LabelPink, Display: entity.RGB{255, 192, 203}, Ranges: []HSVRange{
				{Lower: [3]float64{150, 100, 100}, Upper: [3]float64{170, 255, 255}},
			}},
			{Label: entity.LabelWhite, Display: entity.RGB{255, 255, 255}, Ranges: []HSVRange{
				{Lower: [3]float64{0, 0, 200}, Upper: [3]float64{180, 30, 255}},
			}},
			{Label: entity.LabelBlack, Display: entity.RGB{0, 0, 0}, Ranges: []HSVRange{
				{Lower: [3]float64{0, 0, 0}, Upper: [3]float64{180, 255, 30}},
			}},
		},

		OpenKernel:  3,
		CloseKernel: 7,

		BilateralDiameter:   9,
		BilateralSigmaColor: 75,
		BilateralSigmaSpace: 75,
		CannyLow:            50,
		CannyHigh:           150,
		EdgeDilateKernel:    3,

		MinHoldArea:    100,
		MinCircularity: 0.05,
		MaxCircularity: 0.95,

		MinOverlap:         0.10,
		ChalkValueMin:      200,
		ChalkSaturationMax: 40,
		ChalkKernel:        15,

		RectMargin:        10,
		GrabCutIterations: 5,
		BackgroundKernel:  7,

		Shape:            ShapeContour,
		OutlineThickness: 2,
		OverlayAlpha:     0.3,

		DominantColor:    false,
		DominantClusters: 3,
	}
}

// Spec возвращает описание цвета
func (p Params) Spec(label entity.ColorLabel) (LabelSpec, bool) {
	for _, spec := range p.Labels {
		if spec.Label == label {
			return spec, true
		}
	}
	return LabelSpec{}, false
}

// LabelOrder цвета в порядке обработки
func (p Params) LabelOrder() []entity.ColorLabel {
	labels := make([]entity.ColorLabel, len(p.Labels))
	for i, spec := range p.Labels {
		labels[i] = spec.Label
	}
	return labels
}

// Circularity 4π·S/P²; для вырожденного периметра 0
func Circularity(area, perimeter float64) float64 {
	if perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

// AcceptsShape фильтр кандидатов: площадь не меньше MinHoldArea,
// округлость строго внутри (MinCircularity, MaxCircularity).
func (p Params) AcceptsShape(area, perimeter float64) bool {
	if area < p.MinHoldArea {
		return false
	}
	c := Circularity(area, perimeter)
	return c > p.MinCircularity && c < p.MaxCircularity
}

// Validate проверяет согласованность параметров
func (p Params) Validate() error {
	if len(p.Labels) == 0 {
		return fmt.Errorf("no color labels configured")
	}
	for _, spec := range p.Labels {
		if !spec.Label.Valid() {
			return fmt.Errorf("%w: %q", entity.ErrUnsupportedLabel, spec.Label)
		}
		if len(spec.Ranges) == 0 {
			return fmt.Errorf("label %s has no hsv ranges", spec.Label)
		}
	}
	for name, k := range map[string]int{
		"open kernel":       p.OpenKernel,
		"close kernel":      p.CloseKernel,
		"edge dilate":       p.EdgeDilateKernel,
		"chalk kernel":      p.ChalkKernel,
		"background kernel": p.BackgroundKernel,
	} {
		if k < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, k)
		}
	}
	if p.CannyLow >= p.CannyHigh {
		return fmt.Errorf("canny thresholds must satisfy low < high (%.0f, %.0f)", p.CannyLow, p.CannyHigh)
	}
	if p.MinCircularity >= p.MaxCircularity {
		return fmt.Errorf("circularity bounds must satisfy min < max")
	}
	if p.MinOverlap < 0 || p.MinOverlap >= 1 {
		return fmt.Errorf("min overlap must be in [0, 1), got %.2f", p.MinOverlap)
	}
	if p.OverlayAlpha < 0 || p.OverlayAlpha > 1 {
		return fmt.Errorf("overlay alpha must be in [0, 1], got %.2f", p.OverlayAlpha)
	}
	if p.Shape != ShapeContour && p.Shape != ShapeBox {
		return fmt.Errorf("unknown render shape %q", p.Shape)
	}
	return nil
}

// WithMinHoldArea возвращает копию с другим минимальным размером зацепа
func (p Params) WithMinHoldArea(area float64) Params {
	p.MinHoldArea = area
	return p
}

// WithShape возвращает копию с другим способом закраски
func (p Params) WithShape(shape RenderShape) Params {
	p.Shape = shape
	return p
}

// WithDominantColor включает оценку цвета через k-means
func (p Params) WithDominantColor(enabled bool) Params {
	p.DominantColor = enabled
	return p
}
