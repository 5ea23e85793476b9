package container

import (
	"time"

	"go.uber.org/zap"

	app "climbing-holds/internal/application"
	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/domain/port"
)

// Deps адаптеры инфраструктуры. Cache и Store необязательны.
type Deps struct {
	Users    port.UserRepository
	Detector port.HoldDetector
	Renderer port.Visualizer
	Remover  port.BackgroundRemover
	Cache    port.ResultCache
	Store    port.ArtifactStore

	Strategy     entity.IsolationStrategy
	Workers      int
	QueueTimeout time.Duration
	Logger       *zap.Logger
}

type Container struct {
	UserService       *app.UserService
	RouteService      *app.RouteService
	BackgroundService *app.BackgroundService
	Pool              *app.WorkerPool
}

// New собирает сервисы приложения; пул общий для детекции, отрисовки и удаления фона
func New(deps Deps) *Container {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pool := app.NewWorkerPool(deps.Workers, deps.QueueTimeout)

	return &Container{
		UserService:       app.NewUserService(deps.Users),
		RouteService:      app.NewRouteService(deps.Detector, deps.Renderer, deps.Cache, deps.Store, pool, logger.Named("routes")),
		BackgroundService: app.NewBackgroundService(deps.Remover, deps.Store, pool, deps.Strategy, logger.Named("background")),
		Pool:              pool,
	}
}
