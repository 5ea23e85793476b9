//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/domain/port"
)

// BackgroundIsolator отделяет стену и зацепы от фона и пишет маску в альфа-канал.
type BackgroundIsolator struct {
	params Params
	masks  *ColorMaskBuilder
	edges  *EdgeExtractor
	fuser  *Fuser
	logger *zap.Logger
}

func NewBackgroundIsolator(params Params, logger *zap.Logger) *BackgroundIsolator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackgroundIsolator{
		params: params,
		masks:  NewColorMaskBuilder(params),
		edges:  NewEdgeExtractor(params),
		fuser:  NewFuser(params),
		logger: logger,
	}
}

// Isolate возвращает PNG BGRA: альфа 255 у сохранённых пикселей, 0 у фона.
// При отмене до начала сегментации возвращает nil без ошибки.
func (b *BackgroundIsolator) Isolate(ctx context.Context, imageData []byte, strategy entity.IsolationStrategy) ([]byte, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	if ctx.Err() != nil {
		return nil, nil
	}

	var alpha *Mask
	switch strategy {
	case entity.IsolateGrabCut, "":
		alpha = b.grabCutMask(mat)
	case entity.IsolateHolds:
		alpha, err = b.holdMask(ctx, mat)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedStrategy, strategy)
	}
	defer alpha.Close()

	if ctx.Err() != nil {
		return nil, nil
	}

	b.logger.Debug("background isolated",
		zap.String("strategy", string(strategy)),
		zap.Int("kept_pixels", alpha.Count()),
		zap.Int("total_pixels", mat.Rows()*mat.Cols()))

	rgba := applyAlpha(mat, alpha)
	defer rgba.Close()
	return encodePNG(rgba)
}

// grabCutMask сегментация от прямоугольника с отступом RectMargin.
// Если отступ не оставляет ни фона, ни переднего плана, снимок сохраняется целиком.
func (b *BackgroundIsolator) grabCutMask(img gocv.Mat) *Mask {
	rows, cols := img.Rows(), img.Cols()
	margin := b.params.RectMargin
	if cols <= 2*margin+1 || rows <= 2*margin+1 {
		return FullMask(rows, cols)
	}

	// GC_PR_BGD по всему кадру; GCInitWithRect переразметит прямоугольник.
	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(2, 0, 0, 0), rows, cols, gocv.MatTypeCV8U)
	defer mask.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	rect := image.Rect(margin, margin, cols-margin, rows-margin)
	gocv.GrabCut(img, &mask, rect, &bgdModel, &fgdModel, b.params.GrabCutIterations, gocv.GCInitWithRect)

	fg := extractForeground(mask)
	defer fg.Close()

	closed := fg.Closed(gocv.MorphRect, b.params.BackgroundKernel)
	defer closed.Close()
	return closed.Opened(gocv.MorphRect, b.params.BackgroundKernel)
}

// extractForeground GC_FGD (1) и GC_PR_FGD (3) -> 255
func extractForeground(gcMask gocv.Mat) *Mask {
	fg := NewMask(gcMask.Rows(), gcMask.Cols())
	part := gocv.NewMat()
	defer part.Close()
	for _, v := range []float64{1, 3} {
		gocv.InRangeWithScalar(gcMask, gocv.NewScalar(v, 0, 0, 0), gocv.NewScalar(v, 0, 0, 0), &part)
		gocv.BitwiseOr(fg.mat, part, &fg.mat)
	}
	return fg
}

// holdMask оставляет зацепы всех хроматических цветов и мел в их окрестности.
func (b *BackgroundIsolator) holdMask(ctx context.Context, img gocv.Mat) (*Mask, error) {
	hsv := toHSV(img)
	defer hsv.Close()
	chalk := b.masks.Chalk(hsv)
	defer chalk.Close()
	regions := b.edges.Extract(img)

	masks, err := b.masks.BuildAll(hsv)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, lm := range masks {
			lm.Mask.Close()
		}
	}()

	holds := NewMask(img.Rows(), img.Cols())
	for _, lm := range masks {
		if !lm.Label.Chromatic() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		for _, hold := range b.fuser.Fuse(ctx, img, lm.Mask, chalk, regions, lm.Label) {
			pv := gocv.NewPointsVectorFromPoints([][]image.Point{hold.Contour.ImagePoints()})
			gocv.DrawContours(&holds.mat, pv, 0, white, -1)
			pv.Close()
		}
	}
	defer holds.Close()

	near := holds.Dilated(gocv.MorphEllipse, b.params.ChalkKernel)
	defer near.Close()
	nearChalk := near.Intersect(chalk)
	defer nearChalk.Close()
	return holds.Union(nearChalk), nil
}

// applyAlpha BGR + маска -> BGRA
func applyAlpha(img gocv.Mat, alpha *Mask) gocv.Mat {
	bgra := gocv.NewMat()
	defer bgra.Close()
	gocv.CvtColor(img, &bgra, gocv.ColorBGRToBGRA)

	channels := gocv.Split(bgra)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()
	alpha.mat.CopyTo(&channels[3])

	out := gocv.NewMat()
	gocv.Merge(channels, &out)
	return out
}

// Проверка реализации интерфейса
var _ port.BackgroundRemover = (*BackgroundIsolator)(nil)
