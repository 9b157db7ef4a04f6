package handlers

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/canvas-ai-backend/internal/service"
	"github.com/pribylovaa/canvas-ai-backend/internal/transport/http/middleware"
	"github.com/pribylovaa/canvas-ai-backend/internal/transport/http/response"
)

// userPayload — представление пользователя в ответах API.
// Хэш пароля и слот refresh-токена наружу не сериализуются.
type userPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// authPayload — полезная нагрузка signup/login.
type authPayload struct {
	User         userPayload `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func toAuthPayload(res *service.AuthResult) authPayload {
	return authPayload{
		User: userPayload{
			ID:        res.User.ID.String(),
			Email:     res.User.Email,
			FirstName: res.User.FirstName,
			LastName:  res.User.LastName,
		},
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Signup — POST /auth/signup.
// Валидация отклоняется до обращения к хранилищу; успех — 201 с парой токенов.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupRequest
	if err := decodeJSON(r, &in); err != nil {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "body", Message: "Invalid JSON body"},
		})
		return
	}

	if errs := validateSignup(in); len(errs) > 0 {
		response.ValidationFailed(w, errs)
		return
	}

	res, err := h.auth.Signup(r.Context(), service.SignupInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusCreated, "User created successfully", toAuthPayload(res))
}

// validateSignup повторяет валидацию исходных маршрутов:
// корректный email, пароль не короче 6 символов, имя и фамилия обязательны.
func validateSignup(in signupRequest) []response.FieldError {
	var errs []response.FieldError

	if strings.TrimSpace(in.Email) == "" {
		errs = append(errs, response.FieldError{Field: "email", Message: "Please enter a valid email"})
	}

	if len([]rune(in.Password)) < 6 {
		errs = append(errs, response.FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	}

	if strings.TrimSpace(in.FirstName) == "" {
		errs = append(errs, response.FieldError{Field: "firstName", Message: "First name is required"})
	}

	if strings.TrimSpace(in.LastName) == "" {
		errs = append(errs, response.FieldError{Field: "lastName", Message: "Last name is required"})
	}

	return errs
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login — POST /auth/login.
// Неверный пароль и несуществующий email дают одинаковый 401.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(r, &in); err != nil {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "body", Message: "Invalid JSON body"},
		})
		return
	}

	res, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "Login successful", toAuthPayload(res))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh — POST /auth/refresh.
// Выпускает только новый access-токен; refresh-токен не ротируется.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeJSON(r, &in); err != nil || in.RefreshToken == "" {
		response.JSON(w, http.StatusUnauthorized, response.Envelope{
			Success: false,
			Message: "Refresh token is required",
		})
		return
	}

	accessToken, _, err := h.auth.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "Token refreshed successfully", map[string]string{
		"accessToken": accessToken,
	})
}

// Logout — POST /auth/logout (только для аутентифицированных).
// Идемпотентен: повторный выход — тоже 200.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Unauthenticated(w)
		return
	}

	if err := h.auth.Logout(r.Context(), identity.UserID); err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "Logout successful", nil)
}
