package port

import (
	"context"

	"climbing-holds/internal/domain/entity"
)

// HoldDetector интерфейс детектора зацепов
type HoldDetector interface {
	// Detect ищет зацепы указанных цветов. Отменённый ctx даёт частичный результат без ошибки.
	Detect(ctx context.Context, imageData []byte, labels []entity.ColorLabel) (entity.DetectionResult, error)
}

// Visualizer интерфейс отрисовки найденных зацепов
type Visualizer interface {
	// Render рисует зацепы и возвращает PNG
	Render(imageData []byte, result entity.DetectionResult, mode entity.BlendMode) ([]byte, error)
}

// BackgroundRemover интерфейс отделения фона
type BackgroundRemover interface {
	// Isolate возвращает PNG с альфа-каналом
	Isolate(ctx context.Context, imageData []byte, strategy entity.IsolationStrategy) ([]byte, error)
}
