package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"climbing-holds/internal/domain/entity"
)

// RouteFinder операции над трассами
type RouteFinder interface {
	ProcessImage(ctx context.Context, data []byte) (entity.DetectionResult, error)
	GetRouteByColor(ctx context.Context, data []byte, color string) (entity.Route, error)
	VisualizeRoute(ctx context.Context, data []byte, color string, mode entity.BlendMode) ([]byte, error)
	VisualizeAll(ctx context.Context, data []byte, mode entity.BlendMode) ([]byte, error)
	VisualizeFull(ctx context.Context, data []byte, color string) (entity.FullVisualization, error)
}

// BackgroundRemover удаление фона
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, data []byte, filename string, strategy entity.IsolationStrategy) (entity.BackgroundRemoval, error)
	DefaultStrategy() entity.IsolationStrategy
}

// Handler HTTP-обработчики API
type Handler struct {
	routes     RouteFinder
	background BackgroundRemover
	maxUpload  int64
	logger     *zap.Logger
}

func NewHandler(routes RouteFinder, background BackgroundRemover, maxUpload int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		routes:     routes,
		background: background,
		maxUpload:  maxUpload,
		logger:     logger,
	}
}

type upload struct {
	name string
	data []byte
}

// readImage читает поле file; при ошибке ответ уже записан
func (h *Handler) readImage(c *gin.Context) (upload, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "File is required")
		return upload{}, false
	}

	if h.maxUpload > 0 && file.Size > h.maxUpload {
		h.badRequest(c, fmt.Sprintf("File exceeds size limit (%d MB)", h.maxUpload/(1024*1024)))
		return upload{}, false
	}

	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		h.logger.Warn("invalid file type received", zap.String("content_type", file.Header.Get("Content-Type")))
		h.badRequest(c, "File must be an image")
		return upload{}, false
	}

	f, err := file.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open upload: %w", err))
		return upload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.fail(c, fmt.Errorf("read upload: %w", err))
		return upload{}, false
	}
	return upload{name: file.Filename, data: data}, true
}

// blendMode поле overlay, по умолчанию false
func (h *Handler) blendMode(c *gin.Context) (entity.BlendMode, bool) {
	raw := c.DefaultPostForm("overlay", "false")
	overlay, err := strconv.ParseBool(raw)
	if err != nil {
		h.badRequest(c, fmt.Sprintf("Invalid overlay value %q", raw))
		return "", false
	}
	return entity.BlendModeFromOverlay(overlay), true
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Climbing Holds Service"})
}

// Upload проверяет, что прислано изображение
func (h *Handler) Upload(c *gin.Context) {
	up, ok := h.readImage(c)
	if !ok {
		return
	}
	h.logger.Info("image uploaded", zap.String("filename", up.name), zap.Int("size", len(up.data)))
	c.JSON(http.StatusOK, gin.H{
		"filename": up.name,
		"message":  "Image uploaded successfully",
	})
}

func (h *Handler) IdentifyRoute(c *gin.Context) {
	color, ok := c.GetPostForm("color")
	if !ok {
		h.badRequest(c, "Color is required")
		return
	}
	up, ok := h.readImage(c)
	if !ok {
		return
	}

	route, err := h.routes.GetRouteByColor(c.Request.Context(), up.data, color)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("route identified", zap.String("color", route.Color.String()), zap.Int("holds", len(route.Holds)))
	c.JSON(http.StatusOK, route)
}

func (h *Handler) IdentifyAllRoutes(c *gin.Context) {
	up, ok := h.readImage(c)
	if !ok {
		return
	}

	result, err := h.routes.ProcessImage(c.Request.Context(), up.data)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// VisualizeRoute отвечает строкой base64 с PNG
func (h *Handler) VisualizeRoute(c *gin.Context) {
	color, ok := c.GetPostForm("color")
	if !ok {
		h.badRequest(c, "Color is required")
		return
	}
	mode, ok := h.blendMode(c)
	if !ok {
		return
	}
	up, ok := h.readImage(c)
	if !ok {
		return
	}

	png, err := h.routes.VisualizeRoute(c.Request.Context(), up.data, color, mode)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, encodeBase64(png))
}

func (h *Handler) VisualizeAllRoutes(c *gin.Context) {
	mode, ok := h.blendMode(c)
	if !ok {
		return
	}
	up, ok := h.readImage(c)
	if !ok {
		return
	}

	png, err := h.routes.VisualizeAll(c.Request.Context(), up.data, mode)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, encodeBase64(png))
}

func (h *Handler) VisualizeFull(c *gin.Context) {
	up, ok := h.readImage(c)
	if !ok {
		return
	}

	full, err := h.routes.VisualizeFull(c.Request.Context(), up.data, c.PostForm("color"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, full)
}

func (h *Handler) RemoveBackground(c *gin.Context) {
	strategy, err := entity.ParseIsolationStrategy(c.PostForm("strategy"), h.background.DefaultStrategy())
	if err != nil {
		h.fail(c, err)
		return
	}
	up, ok := h.readImage(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if ctx.Err() != nil {
		h.fail(c, entity.ErrCancelled)
		return
	}

	out, err := h.background.RemoveBackground(ctx, up.data, up.name, strategy)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("background removed", zap.String("filename", up.name), zap.String("file_path", out.FilePath))
	c.JSON(http.StatusOK, out)
}
