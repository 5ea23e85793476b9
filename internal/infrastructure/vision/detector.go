//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/domain/port"
)

// HoldDetector ищет цветные зацепы: маски цветов, области по границам, слияние с мелом.
type HoldDetector struct {
	params Params
	masks  *ColorMaskBuilder
	edges  *EdgeExtractor
	fuser  *Fuser
	logger *zap.Logger
}

// NewHoldDetector создаёт детектор с неизменяемыми параметрами.
func NewHoldDetector(params Params, logger *zap.Logger) *HoldDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HoldDetector{
		params: params,
		masks:  NewColorMaskBuilder(params),
		edges:  NewEdgeExtractor(params),
		fuser:  NewFuser(params),
		logger: logger,
	}
}

// Detect ищет зацепы указанных цветов (всех при пустом списке).
// Цвета проверяются до декодирования. При отмене ctx возвращается то, что
// успели найти, без ошибки: отличить это от пустого результата может только
// владелец ctx.
func (d *HoldDetector) Detect(ctx context.Context, imageData []byte, labels []entity.ColorLabel) (entity.DetectionResult, error) {
	var result entity.DetectionResult

	if len(labels) == 0 {
		labels = d.params.LabelOrder()
	}
	for _, label := range labels {
		if _, ok := d.params.Spec(label); !ok {
			return result, fmt.Errorf("%w: %q", entity.ErrUnsupportedLabel, label)
		}
	}

	if ctx.Err() != nil {
		return result, nil
	}

	mat, err := decodeToMat(imageData)
	if err != nil {
		return result, err
	}
	defer mat.Close()

	hsv := toHSV(mat)
	defer hsv.Close()

	chalk := d.masks.Chalk(hsv)
	defer chalk.Close()

	regions := d.edges.Extract(mat)
	d.logger.Debug("edge regions extracted",
		zap.Int("width", mat.Cols()),
		zap.Int("height", mat.Rows()),
		zap.Int("regions", len(regions)))

	for _, label := range labels {
		if ctx.Err() != nil {
			d.logger.Info("detection cancelled", zap.Int("labels_done", result.Len()))
			return result, nil
		}

		colorMask, err := d.masks.Build(hsv, label)
		if err != nil {
			return result, err
		}
		holds := d.fuser.Fuse(ctx, mat, colorMask, chalk, regions, label)
		colorMask.Close()

		if len(holds) > 0 {
			result.Add(label, holds...)
		}
	}

	return result, nil
}

// Проверка реализации интерфейса
var _ port.HoldDetector = (*HoldDetector)(nil)
