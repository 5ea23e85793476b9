package port

import (
	"context"

	"climbing-holds/internal/domain/entity"
)

// ResultCache кэш результатов детекции по хэшу изображения
type ResultCache interface {
	// Get возвращает false, если записи нет
	Get(ctx context.Context, key string) (entity.DetectionResult, bool, error)

	// Set сохраняет результат
	Set(ctx context.Context, key string, result entity.DetectionResult) error
}
