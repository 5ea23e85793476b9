package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "climbing-holds/internal/application"
	"climbing-holds/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я нахожу зацепы на фотографиях скалодрома и раскрашиваю трассы по цветам.

📸 Отправьте фото стены, и я покажу все найденные трассы.

📋 Команды:
/route <цвет> - показать трассу одного цвета
/all - показать все трассы
/overlay - рисовать поверх снимка (вкл/выкл)
/nobg - убрать фон со следующего фото
/help - справка
/cancel - отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Выберите задачу: /route <цвет>, /all или /nobg
2️⃣ Отправьте фото стены
3️⃣ Получите картинку с подсвеченными зацепами

🎨 Цвета: %s

💡 Рекомендации:
• Снимайте стену целиком при ровном освещении
• Держите камеру прямо, без сильного наклона`

	msgAwaitingRoute   = "📸 Отправьте фото стены, покажу зацепы цвета %s."
	msgAwaitingAll     = "📸 Отправьте фото стены, покажу все трассы."
	msgAwaitingNoBg    = "📸 Отправьте фото стены, уберу фон."
	msgOverlayOn       = "🖌 Рисую поверх снимка."
	msgOverlayOff      = "⬛️ Рисую на чёрном фоне."
	msgCancelled       = "❌ Операция отменена."
	msgRouteUsage      = "Укажите цвет: /route red\n🎨 Цвета: %s"
	msgUnknownColor    = "❓ Не знаю цвет %q.\n🎨 Цвета: %s"
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото стены."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Сервер занят, попробуйте через минуту."
	msgNoHolds         = "🤷 Зацепы не найдены."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
)

// Routes операции над трассами, нужные боту
type Routes interface {
	ProcessImage(ctx context.Context, data []byte) (entity.DetectionResult, error)
	GetRouteByColor(ctx context.Context, data []byte, color string) (entity.Route, error)
	VisualizeRoute(ctx context.Context, data []byte, color string, mode entity.BlendMode) ([]byte, error)
	VisualizeAll(ctx context.Context, data []byte, mode entity.BlendMode) ([]byte, error)
}

// Background удаление фона
type Background interface {
	RemoveBackground(ctx context.Context, data []byte, filename string, strategy entity.IsolationStrategy) (entity.BackgroundRemoval, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	users      *app.UserService
	routes     Routes
	background Background
	http       *http.Client
	logger     *zap.Logger

	mu      sync.Mutex
	running map[int64]*job
}

// job активная обработка фото пользователя
type job struct {
	cancel context.CancelFunc
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, routes Routes, background Background, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("telegram bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:        api,
		users:      users,
		routes:     routes,
		background: background,
		http:       &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		running:    make(map[int64]*job),
	}, nil
}

// Run обрабатывает сообщения, пока не отменят ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.cancelAll()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.cancelRunning(userID)
		if _, err := b.users.Reset(ctx, userID, chatID); err != nil {
			b.logger.Error("failed to reset user", zap.Int64("user_id", userID), zap.Error(err))
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, fmt.Sprintf(msgHelp, colorList()))

	case "route":
		color, err := parseRouteArgs(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, routeArgsReply(msg.CommandArguments(), err))
			return
		}
		if _, err := b.users.AwaitPhoto(ctx, userID, chatID, entity.TaskRoute, color.String()); err != nil {
			b.logger.Error("failed to save user", zap.Int64("user_id", userID), zap.Error(err))
			return
		}
		b.sendMessage(chatID, fmt.Sprintf(msgAwaitingRoute, color))

	case "all":
		if _, err := b.users.AwaitPhoto(ctx, userID, chatID, entity.TaskAllRoutes, ""); err != nil {
			b.logger.Error("failed to save user", zap.Int64("user_id", userID), zap.Error(err))
			return
		}
		b.sendMessage(chatID, msgAwaitingAll)

	case "nobg":
		if _, err := b.users.AwaitPhoto(ctx, userID, chatID, entity.TaskBackground, ""); err != nil {
			b.logger.Error("failed to save user", zap.Int64("user_id", userID), zap.Error(err))
			return
		}
		b.sendMessage(chatID, msgAwaitingNoBg)

	case "overlay":
		user, err := b.users.ToggleOverlay(ctx, userID, chatID)
		if err != nil {
			b.logger.Error("failed to save user", zap.Int64("user_id", userID), zap.Error(err))
			return
		}
		if user.Overlay {
			b.sendMessage(chatID, msgOverlayOn)
		} else {
			b.sendMessage(chatID, msgOverlayOff)
		}

	case "cancel":
		b.cancelRunning(userID)
		if _, err := b.users.Cancel(ctx, userID, chatID); err != nil {
			b.logger.Error("failed to save user", zap.Int64("user_id", userID), zap.Error(err))
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto выполняет задачу пользователя для присланного фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	user, err := b.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		b.logger.Error("failed to get user", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	defer func() {
		if _, err := b.users.SetState(context.WithoutCancel(ctx), userID, chatID, entity.StateMainMenu); err != nil {
			b.logger.Error("failed to save user", zap.Int64("user_id", userID), zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	j := b.track(userID, cancel)
	defer b.untrack(userID, j)

	b.sendMessage(chatID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.logger.Error("failed to download photo", zap.Int64("user_id", userID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.logger.Info("photo received",
		zap.Int64("user_id", userID),
		zap.String("task", string(user.Task)),
		zap.Int("bytes", len(imageData)))

	mode := entity.BlendModeFromOverlay(user.Overlay)
	switch user.Task {
	case entity.TaskRoute:
		err = b.sendRoute(ctx, chatID, imageData, user.Color, mode)
	case entity.TaskBackground:
		err = b.sendNoBackground(ctx, chatID, imageData, photo.FileUniqueID)
	default:
		err = b.sendAllRoutes(ctx, chatID, imageData, mode)
	}
	if err != nil {
		if reply := errorReply(err); reply != "" {
			b.sendMessage(chatID, reply)
		}
		b.logger.Warn("photo processing failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *Bot) sendRoute(ctx context.Context, chatID int64, data []byte, color entity.ColorLabel, mode entity.BlendMode) error {
	route, err := b.routes.GetRouteByColor(ctx, data, color.String())
	if err != nil {
		return err
	}
	if len(route.Holds) == 0 {
		b.sendMessage(chatID, msgNoHolds)
		return nil
	}
	png, err := b.routes.VisualizeRoute(ctx, data, color.String(), mode)
	if err != nil {
		return err
	}
	b.sendPhoto(chatID, "route_"+color.String()+".png", png, fmt.Sprintf("%s: %d зацепов", color, len(route.Holds)))
	return nil
}

func (b *Bot) sendAllRoutes(ctx context.Context, chatID int64, data []byte, mode entity.BlendMode) error {
	result, err := b.routes.ProcessImage(ctx, data)
	if err != nil {
		return err
	}
	if result.Count() == 0 {
		b.sendMessage(chatID, msgNoHolds)
		return nil
	}
	png, err := b.routes.VisualizeAll(ctx, data, mode)
	if err != nil {
		return err
	}
	b.sendPhoto(chatID, "all_routes.png", png, summary(result))
	return nil
}

// sendNoBackground PNG с альфа-каналом уходит документом, иначе Telegram сожмёт его в JPEG
func (b *Bot) sendNoBackground(ctx context.Context, chatID int64, data []byte, name string) error {
	out, err := b.background.RemoveBackground(ctx, data, name, "")
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "nobg.png", Bytes: out.PNG})
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("failed to send document", zap.Error(err))
	}
	return nil
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendPhoto(chatID int64, name string, png []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: png})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("failed to send photo", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// track у пользователя одна активная обработка; новая отменяет старую
func (b *Bot) track(userID int64, cancel context.CancelFunc) *job {
	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.running[userID]; ok {
		prev.cancel()
	}
	j := &job{cancel: cancel}
	b.running[userID] = j
	return j
}

// untrack снимает только свою обработку: её могла уже заменить более новая
func (b *Bot) untrack(userID int64, j *job) {
	j.cancel()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running[userID] == j {
		delete(b.running, userID)
	}
}

func (b *Bot) cancelRunning(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if j, ok := b.running[userID]; ok {
		j.cancel()
		delete(b.running, userID)
	}
}

func (b *Bot) cancelAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, j := range b.running {
		j.cancel()
		delete(b.running, id)
	}
}

// parseRouteArgs первый аргумент команды /route
func parseRouteArgs(args string) (entity.ColorLabel, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", errNoColor
	}
	return entity.ParseLabel(fields[0])
}

var errNoColor = errors.New("color is required")

func routeArgsReply(args string, err error) string {
	if errors.Is(err, errNoColor) {
		return fmt.Sprintf(msgRouteUsage, colorList())
	}
	return fmt.Sprintf(msgUnknownColor, strings.TrimSpace(args), colorList())
}

// errorReply текст для пользователя; пустая строка, если отвечать не нужно
func errorReply(err error) string {
	switch {
	case app.IsCancelled(err):
		return ""
	case errors.Is(err, app.ErrQueueFull):
		return msgBusy
	default:
		return msgProcessingError
	}
}

func colorList() string {
	labels := entity.Labels()
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.String()
	}
	return strings.Join(names, ", ")
}

// summary подпись вида "red: 3, blue: 1"
func summary(result entity.DetectionResult) string {
	parts := make([]string, 0, result.Len())
	for _, g := range result.Groups() {
		parts = append(parts, fmt.Sprintf("%s: %d", g.Label, len(g.Holds)))
	}
	return strings.Join(parts, ", ")
}
