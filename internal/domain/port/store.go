package port

// ArtifactStore сохраняет готовые изображения на диск
type ArtifactStore interface {
	// SaveVisualization сохраняет визуализацию и возвращает путь к файлу
	SaveVisualization(prefix string, png []byte) (string, error)

	// SaveBackgroundRemoval сохраняет изображение без фона
	SaveBackgroundRemoval(originalName string, png []byte) (string, error)
}
