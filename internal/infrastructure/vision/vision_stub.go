//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"climbing-holds/internal/domain/entity"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// HoldDetector заглушка без OpenCV
type HoldDetector struct {
	params Params
}

// NewHoldDetector создаёт детектор-заглушку (без OpenCV).
func NewHoldDetector(params Params, logger *zap.Logger) *HoldDetector {
	_ = logger
	return &HoldDetector{params: params}
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *HoldDetector) Detect(ctx context.Context, imageData []byte, labels []entity.ColorLabel) (entity.DetectionResult, error) {
	_ = ctx
	_ = imageData
	_ = labels
	return entity.DetectionResult{}, errNoGoCV
}

// BackgroundIsolator заглушка без OpenCV
type BackgroundIsolator struct {
	params Params
}

func NewBackgroundIsolator(params Params, logger *zap.Logger) *BackgroundIsolator {
	_ = logger
	return &BackgroundIsolator{params: params}
}

// Isolate возвращает ошибку, если сборка без тега gocv.
func (b *BackgroundIsolator) Isolate(ctx context.Context, imageData []byte, strategy entity.IsolationStrategy) ([]byte, error) {
	_ = ctx
	_ = imageData
	_ = strategy
	return nil, errNoGoCV
}

// Renderer заглушка без OpenCV
type Renderer struct {
	params Params
}

func NewRenderer(params Params) *Renderer {
	return &Renderer{params: params}
}

// Render возвращает ошибку, если сборка без тега gocv.
func (r *Renderer) Render(imageData []byte, result entity.DetectionResult, mode entity.BlendMode) ([]byte, error) {
	_ = imageData
	_ = result
	_ = mode
	return nil, errNoGoCV
}
