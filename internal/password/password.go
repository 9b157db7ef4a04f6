// password — одностороннее солёное хэширование паролей (bcrypt).
//
// bcrypt с cost 12 — операция на десятки миллисекунд CPU, поэтому хэширование
// выполняется через ограниченный пул: одновременно работает не более
// maxParallel операций, остальные ждут свободного слота или отмены контекста.
// Разделяемого изменяемого состояния нет, Hasher безопасен для конкурентного
// использования.
package password

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// Hasher хэширует и проверяет пароли с фиксированным work-фактором.
type Hasher struct {
	cost int
	sem  chan struct{}
}

// NewHasher создаёт Hasher.
// cost вне диапазона bcrypt приводится к bcrypt.DefaultCost;
// maxParallel <= 0 — использовать runtime.GOMAXPROCS(0).
func NewHasher(cost, maxParallel int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	if maxParallel <= 0 {
		maxParallel = runtime.GOMAXPROCS(0)
	}

	return &Hasher{
		cost: cost,
		sem:  make(chan struct{}, maxParallel),
	}
}

// Hash хэширует пароль. Ошибка возможна только при катастрофическом сбое
// источника энтропии/библиотеки — вызывающий трактует её как внутреннюю.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	const op = "password.Hash"

	if err := h.acquire(ctx); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer h.release()

	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// Verify сравнивает пароль с хэшем. Сравнение устойчиво ко времени выполнения
// (bcrypt), на испорченном хэше не паникует и не возвращает ошибку — только false.
func (h *Hasher) Verify(ctx context.Context, plaintext, hash string) bool {
	if err := h.acquire(ctx); err != nil {
		return false
	}
	defer h.release()

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() {
	<-h.sem
}
