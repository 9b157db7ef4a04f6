package models

import (
	"time"

	"github.com/google/uuid"
)

// User - модель пользователя в системе.
//
// CurrentRefreshToken — единственный «слот» активной сессии: хранится
// SHA-256-хэш последнего выданного refresh-токена (nil — сессии нет).
// Перезапись слота мгновенно отзывает предыдущую сессию (O(1)-ревокация).
// PasswordHash непрозрачен и никогда не отдается наружу.
type User struct {
	ID                  uuid.UUID
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	IsActive            bool
	CurrentRefreshToken *string
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
