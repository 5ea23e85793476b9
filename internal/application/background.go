package app

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/domain/port"
)

// BackgroundService удаление фона со снимка стены
type BackgroundService struct {
	remover  port.BackgroundRemover
	store    port.ArtifactStore
	pool     *WorkerPool
	fallback entity.IsolationStrategy
	logger   *zap.Logger
}

// NewBackgroundService fallback применяется, когда стратегия не указана
func NewBackgroundService(remover port.BackgroundRemover, store port.ArtifactStore, pool *WorkerPool, fallback entity.IsolationStrategy, logger *zap.Logger) *BackgroundService {
	if pool == nil {
		pool = NewWorkerPool(1, 0)
	}
	if fallback == "" {
		fallback = entity.IsolateGrabCut
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackgroundService{
		remover:  remover,
		store:    store,
		pool:     pool,
		fallback: fallback,
		logger:   logger,
	}
}

// DefaultStrategy стратегия для запросов без явного выбора
func (s *BackgroundService) DefaultStrategy() entity.IsolationStrategy {
	return s.fallback
}

// RemoveBackground возвращает PNG с прозрачным фоном. Если настроено
// хранилище, файл сохраняется и путь попадает в ответ.
func (s *BackgroundService) RemoveBackground(ctx context.Context, data []byte, filename string, strategy entity.IsolationStrategy) (entity.BackgroundRemoval, error) {
	if strategy == "" {
		strategy = s.fallback
	}

	var png []byte
	err := s.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		png, err = s.remover.Isolate(ctx, data, strategy)
		return err
	})
	if err != nil {
		return entity.BackgroundRemoval{}, err
	}
	if ctx.Err() != nil || png == nil {
		return entity.BackgroundRemoval{}, fmt.Errorf("%w: background removal", entity.ErrCancelled)
	}

	out := entity.BackgroundRemoval{
		Base64Image: base64.StdEncoding.EncodeToString(png),
		PNG:         png,
	}
	if s.store != nil {
		path, err := s.store.SaveBackgroundRemoval(filename, png)
		if err != nil {
			s.logger.Warn("failed to save background removal", zap.String("filename", filename), zap.Error(err))
		} else {
			out.FilePath = path
		}
	}

	s.logger.Info("background removed",
		zap.String("filename", filename),
		zap.String("strategy", string(strategy)),
		zap.Int("png_bytes", len(png)))
	return out, nil
}
