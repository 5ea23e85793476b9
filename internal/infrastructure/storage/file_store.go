package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"climbing-holds/internal/domain/port"
)

const timestampLayout = "20060102_150405"

// FileStore сохраняет PNG-артефакты в каталоги на диске
type FileStore struct {
	imagesDir         string
	visualizationsDir string
	now               func() time.Time
}

// NewFileStore создаёт каталоги, если их нет
func NewFileStore(imagesDir, visualizationsDir string) (*FileStore, error) {
	for _, dir := range []string{imagesDir, visualizationsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return &FileStore{
		imagesDir:         imagesDir,
		visualizationsDir: visualizationsDir,
		now:               time.Now,
	}, nil
}

// SaveVisualization пишет <visualizations>/<prefix>_<ts>.png
func (s *FileStore) SaveVisualization(prefix string, png []byte) (string, error) {
	name := fmt.Sprintf("%s_%s.png", sanitize(prefix, "visualization"), s.now().Format(timestampLayout))
	return s.write(filepath.Join(s.visualizationsDir, name), png)
}

// SaveBackgroundRemoval пишет <images>/<name>_nobg_<ts>.png, name без расширения
func (s *FileStore) SaveBackgroundRemoval(originalName string, png []byte) (string, error) {
	base := filepath.Base(originalName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_nobg_%s.png", sanitize(base, "image"), s.now().Format(timestampLayout))
	return s.write(filepath.Join(s.imagesDir, name), png)
}

func (s *FileStore) write(path string, data []byte) (string, error) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// sanitize оставляет буквы, цифры, '-' и '_'
func sanitize(name, fallback string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if strings.Trim(clean, "_") == "" {
		return fallback
	}
	return clean
}

// Проверка реализации интерфейса
var _ port.ArtifactStore = (*FileStore)(nil)
