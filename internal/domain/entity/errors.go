package entity

import "errors"

var (
	// ErrInvalidImage байты не декодируются в цветное изображение
	ErrInvalidImage = errors.New("invalid image")
	// ErrUnsupportedLabel цвет не входит в набор распознаваемых
	ErrUnsupportedLabel = errors.New("unsupported color")
	// ErrUnsupportedStrategy неизвестный способ удаления фона
	ErrUnsupportedStrategy = errors.New("unsupported isolation strategy")
	// ErrCancelled запрос отменён до завершения обработки
	ErrCancelled = errors.New("request cancelled")
)
