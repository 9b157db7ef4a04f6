package models

import "github.com/google/uuid"

// Identity — минимальная личность аутентифицированного запроса.
// Это ЕДИНСТВЕННОЕ, что мидлвар передаёт нижестоящим обработчикам:
// ни токенов, ни хэша пароля в контексте запроса не бывает.
type Identity struct {
	UserID uuid.UUID
	Email  string
}
