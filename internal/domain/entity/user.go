package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото стены
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// Task что сделать с присланным фото
type Task string

const (
	TaskRoute      Task = "route"      // зацепы одного цвета
	TaskAllRoutes  Task = "all_routes" // все цвета
	TaskBackground Task = "background" // удаление фона
)

// User представляет пользователя бота
type User struct {
	ID      int64      // Telegram User ID
	ChatID  int64      // Telegram Chat ID
	State   UserState  // Текущее состояние пользователя
	Task    Task       // Задача для следующего фото
	Color   ColorLabel // Цвет трассы для TaskRoute
	Overlay bool       // Рисовать поверх снимка
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
		Task:   TaskAllRoutes,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// Await ставит задачу и переводит пользователя в ожидание фото
func (u *User) Await(task Task, color ColorLabel) {
	u.Task = task
	u.Color = color
	u.State = StateAwaitingPhoto
}
