//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"math"

	"gocv.io/x/gocv"

	"climbing-holds/internal/domain/entity"
)

// Fuser объединяет цветовую маску с областями из границ и мелом вокруг них
type Fuser struct {
	params Params
}

func NewFuser(params Params) *Fuser {
	return &Fuser{params: params}
}

// Fuse возвращает зацепы цвета label. Каждая область обрабатывается в своём
// окне: её прямоугольник, расширенный на ChalkKernel. Отмена ctx проверяется
// перед каждой областью; уже найденные зацепы возвращаются.
func (f *Fuser) Fuse(ctx context.Context, img gocv.Mat, colorMask, chalk *Mask, regions []Region, label entity.ColorLabel) []entity.Hold {
	spec, ok := f.params.Spec(label)
	if !ok {
		return nil
	}

	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	var holds []entity.Hold
	for _, region := range regions {
		if ctx.Err() != nil {
			return holds
		}
		roi := region.Bounds().Inset(-f.params.ChalkKernel).Intersect(bounds)
		if roi.Empty() {
			continue
		}
		holds = append(holds, f.fuseRegion(img, colorMask, chalk, region, roi, spec)...)
	}
	return holds
}

func (f *Fuser) fuseRegion(img gocv.Mat, colorMask, chalk *Mask, region Region, roi image.Rectangle, spec LabelSpec) []entity.Hold {
	area := maskFromContour(roi.Dy(), roi.Dx(), region.Points, roi.Min)
	defer area.Close()
	total := area.Count()
	if total == 0 {
		return nil
	}

	localColor := colorMask.Sub(roi)
	defer localColor.Close()
	core := area.Intersect(localColor)
	defer core.Close()

	// Область без нужного цвета: посторонняя граница (стык панелей, тень).
	if float64(core.Count())/float64(total) <= f.params.MinOverlap {
		return nil
	}

	localChalk := chalk.Sub(roi)
	defer localChalk.Close()
	near := area.Dilated(gocv.MorphEllipse, f.params.ChalkKernel)
	defer near.Close()
	nearChalk := near.Intersect(localChalk)
	defer nearChalk.Close()
	final := core.Union(nearChalk)
	defer final.Close()

	view := img.Region(roi)
	patch := view.Clone()
	view.Close()
	defer patch.Close()

	var holds []entity.Hold
	for _, part := range final.Regions(image.Point{}) {
		if part.Area < f.params.MinHoldArea {
			continue
		}
		holds = append(holds, f.describe(patch, final, localChalk, part, roi.Min, spec))
	}
	return holds
}

// describe строит зацеп по одной связной части итоговой маски.
// patch, final и chalk заданы в координатах окна, offset переводит в координаты снимка.
func (f *Fuser) describe(patch gocv.Mat, final, chalk *Mask, part Region, offset image.Point, spec LabelSpec) entity.Hold {
	shape := maskFromContour(final.Rows(), final.Cols(), part.Points, image.Point{})
	defer shape.Close()
	pixels := shape.Intersect(final)
	defer pixels.Close()

	rect := part.Bounds()
	cx := float64(rect.Min.X) + float64(rect.Dx())/2
	cy := float64(rect.Min.Y) + float64(rect.Dy())/2
	m := gocv.Moments(pixels.mat, true)
	if m00 := m["m00"]; m00 > 0 {
		cx = m["m10"] / m00
		cy = m["m01"] / m00
	}

	cols := pixels.Cols()
	holdBytes := pixels.mat.ToBytes()
	chalkBytes := chalk.mat.ToBytes()
	bgr := patch.ToBytes()

	var samples []entity.RGB
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := y*cols + x
			if holdBytes[i] == 0 || chalkBytes[i] != 0 {
				continue
			}
			samples = append(samples, entity.RGB{bgr[3*i+2], bgr[3*i+1], bgr[3*i]})
		}
	}

	contour := make([]image.Point, len(part.Points))
	for i, p := range part.Points {
		contour[i] = p.Add(offset)
	}

	return entity.Hold{
		Label: spec.Label,
		Position: entity.Point{
			X: offset.X + int(math.Round(cx)),
			Y: offset.Y + int(math.Round(cy)),
		},
		Size:    entity.Size{Width: rect.Dx(), Height: rect.Dy()},
		Contour: entity.ContourFromPoints(contour),
		Color:   representativeColor(samples, spec.Display, f.params.DominantColor, f.params.DominantClusters),
	}
}
