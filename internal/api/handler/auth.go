package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DevAthul-88/Sonnet-AI/internal/api/response"
	"github.com/DevAthul-88/Sonnet-AI/internal/domain"
	"github.com/DevAthul-88/Sonnet-AI/internal/service"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			errs := make(map[string]string)
			for _, e := range validationErrors {
				field := e.Field()
				switch e.Tag() {
				case "required":
					errs[field] = "field is required"
				case "email":
					errs[field] = "invalid email format"
				case "min":
					errs[field] = "must be at least " + e.Param() + " characters"
				case "max":
					errs[field] = "must be at most " + e.Param() + " characters"
				default:
					errs[field] = "validation failed on " + e.Tag()
				}
			}
			response.BadRequest(w, errs)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "failed to register")
		return
	}

	response.Created(w, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	tokens, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			response.Unauthorized(w, "invalid credentials")
			return
		}
		response.InternalError(w, "failed to login")
		return
	}

	response.OK(w, tokens)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			response.Unauthorized(w, "invalid refresh token")
			return
		}
		response.InternalError(w, "failed to refresh token")
		return
	}

	response.OK(w, tokens)
}
