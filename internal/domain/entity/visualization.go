package entity

import "fmt"

// BlendMode способ отрисовки зацепов
type BlendMode string

const (
	BlendOpaque  BlendMode = "opaque"  // чёрный холст
	BlendOverlay BlendMode = "overlay" // поверх исходного снимка
)

// BlendModeFromOverlay переводит флаг overlay из запроса
func BlendModeFromOverlay(overlay bool) BlendMode {
	if overlay {
		return BlendOverlay
	}
	return BlendOpaque
}

// IsolationStrategy способ отделения фона
type IsolationStrategy string

const (
	// IsolateGrabCut итеративная сегментация от центрального прямоугольника
	IsolateGrabCut IsolationStrategy = "grabcut"
	// IsolateHolds оставляет только зацепы и мел рядом с ними
	IsolateHolds IsolationStrategy = "holds"
)

// ParseIsolationStrategy пустая строка означает стратегию по умолчанию
func ParseIsolationStrategy(s string, fallback IsolationStrategy) (IsolationStrategy, error) {
	switch IsolationStrategy(s) {
	case "":
		return fallback, nil
	case IsolateGrabCut, IsolateHolds:
		return IsolationStrategy(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedStrategy, s)
	}
}
