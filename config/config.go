package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/infrastructure/vision"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Vision   VisionConfig   `mapstructure:"vision"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxUpload    int64         `mapstructure:"max_upload"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type StorageConfig struct {
	ImagesDir         string `mapstructure:"images_dir"`
	VisualizationsDir string `mapstructure:"visualizations_dir"`
	SaveArtifacts     bool   `mapstructure:"save_artifacts"`
	CacheSize         int    `mapstructure:"cache_size"`
}

type VisionConfig struct {
	MinHoldArea        float64       `mapstructure:"min_hold_area"`
	MinOverlap         float64       `mapstructure:"min_overlap"`
	CannyLow           float32       `mapstructure:"canny_low"`
	CannyHigh          float32       `mapstructure:"canny_high"`
	ChalkValueMin      float64       `mapstructure:"chalk_value_min"`
	ChalkSaturationMax float64       `mapstructure:"chalk_saturation_max"`
	RectMargin         int           `mapstructure:"rect_margin"`
	GrabCutIterations  int           `mapstructure:"grabcut_iterations"`
	Workers            int           `mapstructure:"workers"`
	QueueTimeout       time.Duration `mapstructure:"queue_timeout"`
	DominantColor      bool          `mapstructure:"dominant_color"`
	Shape              string        `mapstructure:"shape"`
	BackgroundStrategy string        `mapstructure:"background_strategy"`
}

// Load читает .env (если есть), затем config.yaml из paths (если есть) и
// переменные окружения вида SERVER_PORT, TELEGRAM_TOKEN.
func Load(paths ...string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := cfg.VisionParams(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.max_upload", 20*1024*1024)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("telegram.token", "")

	v.SetDefault("storage.images_dir", "Images")
	v.SetDefault("storage.visualizations_dir", "visualizations")
	v.SetDefault("storage.save_artifacts", true)
	v.SetDefault("storage.cache_size", 256)

	d := vision.DefaultParams()
	v.SetDefault("vision.min_hold_area", d.MinHoldArea)
	v.SetDefault("vision.min_overlap", d.MinOverlap)
	v.SetDefault("vision.canny_low", d.CannyLow)
	v.SetDefault("vision.canny_high", d.CannyHigh)
	v.SetDefault("vision.chalk_value_min", d.ChalkValueMin)
	v.SetDefault("vision.chalk_saturation_max", d.ChalkSaturationMax)
	v.SetDefault("vision.rect_margin", d.RectMargin)
	v.SetDefault("vision.grabcut_iterations", d.GrabCutIterations)
	v.SetDefault("vision.workers", 1)
	v.SetDefault("vision.queue_timeout", 30*time.Second)
	v.SetDefault("vision.dominant_color", d.DominantColor)
	v.SetDefault("vision.shape", string(d.Shape))
	v.SetDefault("vision.background_strategy", string(entity.IsolateGrabCut))
}

// VisionParams параметры конвейера на основе значений по умолчанию
func (c *Config) VisionParams() (vision.Params, error) {
	p := vision.DefaultParams()
	v := c.Vision

	p.MinHoldArea = v.MinHoldArea
	p.MinOverlap = v.MinOverlap
	p.CannyLow = v.CannyLow
	p.CannyHigh = v.CannyHigh
	p.ChalkValueMin = v.ChalkValueMin
	p.ChalkSaturationMax = v.ChalkSaturationMax
	p.RectMargin = v.RectMargin
	p.GrabCutIterations = v.GrabCutIterations
	p.DominantColor = v.DominantColor

	switch shape := vision.RenderShape(v.Shape); shape {
	case vision.ShapeContour, vision.ShapeBox:
		p.Shape = shape
	case "":
	default:
		return vision.Params{}, fmt.Errorf("unknown render shape %q", v.Shape)
	}

	if err := p.Validate(); err != nil {
		return vision.Params{}, fmt.Errorf("invalid vision config: %w", err)
	}
	return p, nil
}

// BackgroundStrategy стратегия удаления фона по умолчанию
func (c *Config) BackgroundStrategy() (entity.IsolationStrategy, error) {
	return entity.ParseIsolationStrategy(c.Vision.BackgroundStrategy, entity.IsolateGrabCut)
}
