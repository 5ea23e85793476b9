package app

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"go.uber.org/zap"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/domain/port"
)

// RouteService поиск трасс по цвету и их визуализация.
// Детектор при отмене отдаёт частичный результат; сервис его не кэширует
// и возвращает entity.ErrCancelled, чтобы транспорт ответил отменой, а не трассой.
type RouteService struct {
	detector port.HoldDetector
	renderer port.Visualizer
	cache    port.ResultCache
	store    port.ArtifactStore
	pool     *WorkerPool
	logger   *zap.Logger
}

// NewRouteService создаёт сервис трасс. cache и store необязательны.
func NewRouteService(detector port.HoldDetector, renderer port.Visualizer, cache port.ResultCache, store port.ArtifactStore, pool *WorkerPool, logger *zap.Logger) *RouteService {
	if pool == nil {
		pool = NewWorkerPool(1, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteService{
		detector: detector,
		renderer: renderer,
		cache:    cache,
		store:    store,
		pool:     pool,
		logger:   logger,
	}
}

// ProcessImage ищет зацепы всех цветов
func (s *RouteService) ProcessImage(ctx context.Context, data []byte) (entity.DetectionResult, error) {
	return s.detect(ctx, data, nil)
}

// GetRouteByColor возвращает трассу одного цвета. Цвет проверяется до
// декодирования изображения; пустая трасса отдаётся пустым списком.
func (s *RouteService) GetRouteByColor(ctx context.Context, data []byte, color string) (entity.Route, error) {
	label, err := entity.ParseLabel(color)
	if err != nil {
		return entity.Route{}, err
	}

	result, err := s.detect(ctx, data, []entity.ColorLabel{label})
	if err != nil {
		return entity.Route{}, err
	}

	holds := result.Holds(label)
	if holds == nil {
		holds = []entity.Hold{}
	}
	return entity.Route{Color: label, Holds: holds}, nil
}

// VisualizeRoute рисует трассу одного цвета и возвращает PNG
func (s *RouteService) VisualizeRoute(ctx context.Context, data []byte, color string, mode entity.BlendMode) ([]byte, error) {
	label, err := entity.ParseLabel(color)
	if err != nil {
		return nil, err
	}

	result, err := s.detect(ctx, data, []entity.ColorLabel{label})
	if err != nil {
		return nil, err
	}

	png, err := s.render(ctx, data, result, mode)
	if err != nil {
		return nil, err
	}
	s.save("route_"+label.String(), png)
	return png, nil
}

// VisualizeAll рисует зацепы всех цветов и возвращает PNG
func (s *RouteService) VisualizeAll(ctx context.Context, data []byte, mode entity.BlendMode) ([]byte, error) {
	result, err := s.detect(ctx, data, nil)
	if err != nil {
		return nil, err
	}

	png, err := s.render(ctx, data, result, mode)
	if err != nil {
		return nil, err
	}
	s.save("all_routes", png)
	return png, nil
}

// VisualizeFull возвращает зацепы и обе визуализации в base64.
// Пустой color означает все цвета.
func (s *RouteService) VisualizeFull(ctx context.Context, data []byte, color string) (entity.FullVisualization, error) {
	var labels []entity.ColorLabel
	if strings.TrimSpace(color) != "" {
		label, err := entity.ParseLabel(color)
		if err != nil {
			return entity.FullVisualization{}, err
		}
		labels = []entity.ColorLabel{label}
	}

	result, err := s.detect(ctx, data, labels)
	if err != nil {
		return entity.FullVisualization{}, err
	}

	opaque, err := s.render(ctx, data, result, entity.BlendOpaque)
	if err != nil {
		return entity.FullVisualization{}, err
	}
	overlay, err := s.render(ctx, data, result, entity.BlendOverlay)
	if err != nil {
		return entity.FullVisualization{}, err
	}

	return entity.FullVisualization{
		Holds:         result,
		Visualization: base64.StdEncoding.EncodeToString(opaque),
		Overlay:       base64.StdEncoding.EncodeToString(overlay),
	}, nil
}

// detect запускает детектор через пул. Неполный результат отменённого
// запроса не кэшируется и превращается в ErrCancelled.
func (s *RouteService) detect(ctx context.Context, data []byte, labels []entity.ColorLabel) (entity.DetectionResult, error) {
	key := CacheKey(data, labels)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("failed to get cache", zap.String("cache_key", key), zap.Error(err))
		case ok:
			s.logger.Debug("cache hit", zap.String("cache_key", key))
			return cached, nil
		}
	}

	var result entity.DetectionResult
	err := s.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.detector.Detect(ctx, data, labels)
		return err
	})
	if err != nil {
		return entity.DetectionResult{}, err
	}
	if ctx.Err() != nil {
		return entity.DetectionResult{}, entity.ErrCancelled
	}

	s.logger.Info("holds detected",
		zap.String("cache_key", key),
		zap.Int("labels", result.Len()),
		zap.Int("holds", result.Count()))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.logger.Warn("failed to set cache", zap.String("cache_key", key), zap.Error(err))
		}
	}
	return result, nil
}

func (s *RouteService) render(ctx context.Context, data []byte, result entity.DetectionResult, mode entity.BlendMode) ([]byte, error) {
	var png []byte
	err := s.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		png, err = s.renderer.Render(data, result, mode)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, entity.ErrCancelled
	}
	return png, nil
}

// save ошибка записи на диск не мешает ответу
func (s *RouteService) save(prefix string, png []byte) {
	if s.store == nil {
		return
	}
	path, err := s.store.SaveVisualization(prefix, png)
	if err != nil {
		s.logger.Warn("failed to save visualization", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	s.logger.Debug("visualization saved", zap.String("path", path))
}

// CacheKey md5 изображения плюс набор цветов ("all" для всех)
func CacheKey(data []byte, labels []entity.ColorLabel) string {
	sum := md5.Sum(data)
	set := "all"
	if len(labels) > 0 {
		parts := make([]string, len(labels))
		for i, l := range labels {
			parts[i] = l.String()
		}
		set = strings.Join(parts, ",")
	}
	return hex.EncodeToString(sum[:]) + ":" + set
}

// IsCancelled отличает отмену от остальных ошибок
func IsCancelled(err error) bool {
	return errors.Is(err, entity.ErrCancelled) || errors.Is(err, context.Canceled)
}
