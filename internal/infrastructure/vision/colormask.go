//go:build gocv
// +build gocv

package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"climbing-holds/internal/domain/entity"
)

// ColorMaskBuilder строит маски цветов по диапазонам HSV
type ColorMaskBuilder struct {
	params Params
}

func NewColorMaskBuilder(params Params) *ColorMaskBuilder {
	return &ColorMaskBuilder{params: params}
}

// toHSV переводит BGR в HSV; вызывающий освобождает результат
func toHSV(img gocv.Mat) gocv.Mat {
	hsv := gocv.NewMat()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)
	return hsv
}

// Build объединяет диапазоны цвета и сглаживает маску: open, затем close.
func (b *ColorMaskBuilder) Build(hsv gocv.Mat, label entity.ColorLabel) (*Mask, error) {
	spec, ok := b.params.Spec(label)
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedLabel, label)
	}

	raw := b.inRanges(hsv, spec.Ranges)
	defer raw.Close()

	opened := raw.Opened(gocv.MorphRect, b.params.OpenKernel)
	defer opened.Close()

	return opened.Closed(gocv.MorphRect, b.params.CloseKernel), nil
}

// LabelMask маска одного цвета
type LabelMask struct {
	Label entity.ColorLabel
	Mask  *Mask
}

// BuildAll маски всех настроенных цветов в порядке параметров.
// При ошибке уже построенные маски освобождаются.
func (b *ColorMaskBuilder) BuildAll(hsv gocv.Mat) ([]LabelMask, error) {
	out := make([]LabelMask, 0, len(b.params.Labels))
	for _, label := range b.params.LabelOrder() {
		m, err := b.Build(hsv, label)
		if err != nil {
			for _, lm := range out {
				lm.Mask.Close()
			}
			return nil, fmt.Errorf("build %s mask: %w", label, err)
		}
		out = append(out, LabelMask{Label: label, Mask: m})
	}
	return out, nil
}

// Chalk яркие малонасыщенные пиксели
func (b *ColorMaskBuilder) Chalk(hsv gocv.Mat) *Mask {
	return b.inRanges(hsv, []HSVRange{{
		Lower: [3]float64{0, 0, b.params.ChalkValueMin},
		Upper: [3]float64{180, b.params.ChalkSaturationMax, 255},
	}})
}

func (b *ColorMaskBuilder) inRanges(hsv gocv.Mat, ranges []HSVRange) *Mask {
	out := NewMask(hsv.Rows(), hsv.Cols())
	part := gocv.NewMat()
	defer part.Close()

	for _, r := range ranges {
		gocv.InRangeWithScalar(hsv, hsvScalar(r.Lower), hsvScalar(r.Upper), &part)
		gocv.BitwiseOr(out.mat, part, &out.mat)
	}
	return out
}

func hsvScalar(v [3]float64) gocv.Scalar {
	return gocv.NewScalar(v[0], v[1], v[2], 0)
}
