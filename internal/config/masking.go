package config

import (
	"net/url"
	"strings"
)

// maskSecret маскирует секрет, оставляя только первые 4 и последние 4 символа
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) < 8 {
		return "***"
	}

	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

// maskProxy скрывает пароль в URL прокси, оставляя схему, пользователя и хост.
func maskProxy(proxy string) string {
	if proxy == "" {
		return ""
	}

	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		return maskSecret(proxy)
	}

	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.Redacted()
}

// ValidationError ошибка валидации конкретного поля
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
