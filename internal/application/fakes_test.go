package app

import (
	"context"
	"fmt"
	"sync"

	"climbing-holds/internal/domain/entity"
)

type fakeDetector struct {
	mu     sync.Mutex
	calls  int
	labels [][]entity.ColorLabel
	result entity.DetectionResult
	err    error
	// onDetect вызывается внутри Detect, например чтобы отменить ctx
	onDetect func()
}

func (d *fakeDetector) Detect(ctx context.Context, data []byte, labels []entity.ColorLabel) (entity.DetectionResult, error) {
	d.mu.Lock()
	d.calls++
	d.labels = append(d.labels, labels)
	d.mu.Unlock()
	if d.onDetect != nil {
		d.onDetect()
	}
	if d.err != nil {
		return entity.DetectionResult{}, d.err
	}
	if len(labels) == 1 {
		return d.result.Only(labels[0]), nil
	}
	return d.result, nil
}

type fakeRenderer struct {
	modes []entity.BlendMode
}

func (r *fakeRenderer) Render(data []byte, result entity.DetectionResult, mode entity.BlendMode) ([]byte, error) {
	r.modes = append(r.modes, mode)
	return []byte(fmt.Sprintf("png:%s:%d", mode, result.Count())), nil
}

type fakeRemover struct {
	strategies []entity.IsolationStrategy
	out        []byte
	err        error
}

func (r *fakeRemover) Isolate(ctx context.Context, data []byte, strategy entity.IsolationStrategy) ([]byte, error) {
	r.strategies = append(r.strategies, strategy)
	if r.err != nil {
		return nil, r.err
	}
	if ctx.Err() != nil {
		return nil, nil
	}
	return r.out, nil
}

type fakeCache struct {
	items map[string]entity.DetectionResult
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]entity.DetectionResult)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (entity.DetectionResult, bool, error) {
	r, ok := c.items[key]
	return r, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, result entity.DetectionResult) error {
	c.items[key] = result
	c.sets++
	return nil
}

type fakeStore struct {
	visualizations []string
	removals       []string
}

func (s *fakeStore) SaveVisualization(prefix string, png []byte) (string, error) {
	s.visualizations = append(s.visualizations, prefix)
	return "visualizations/" + prefix + ".png", nil
}

func (s *fakeStore) SaveBackgroundRemoval(originalName string, png []byte) (string, error) {
	s.removals = append(s.removals, originalName)
	return "Images/" + originalName + "_nobg.png", nil
}

func sampleResult() entity.DetectionResult {
	var r entity.DetectionResult
	r.Add(entity.LabelRed,
		entity.Hold{Label: entity.LabelRed, Position: entity.Point{X: 10, Y: 10}, Size: entity.Size{Width: 5, Height: 5}},
		entity.Hold{Label: entity.LabelRed, Position: entity.Point{X: 40, Y: 12}, Size: entity.Size{Width: 6, Height: 4}},
	)
	r.Add(entity.LabelBlue,
		entity.Hold{Label: entity.LabelBlue, Position: entity.Point{X: 70, Y: 30}, Size: entity.Size{Width: 8, Height: 8}},
	)
	return r
}
