package models

// User — учетная запись пользователя сервиса.
// UID служит ключевым материалом для адресов подписки и денежного счета.
type User struct {
	UID          string
	Email        string
	Username     string
	PasswordHash string
	Role         string
}

// DummyRegister — DTO регистрации пользователя.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin — DTO входа пользователя.
type DummyLogin struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}
