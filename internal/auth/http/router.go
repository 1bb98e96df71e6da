package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/AlibekovAA/fin-ledger/internal/auth/service"
	commonerrors "github.com/AlibekovAA/fin-ledger/internal/common/errors"
	commonhttp "github.com/AlibekovAA/fin-ledger/internal/common/http"
	"github.com/AlibekovAA/fin-ledger/internal/common/jwtverify"
	"github.com/AlibekovAA/fin-ledger/internal/common/logger"
	userdomain "github.com/AlibekovAA/fin-ledger/internal/user/domain"
)

type Router struct {
	service        *service.AuthService
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewRouter(svc *service.AuthService, requestTimeout time.Duration, log *logger.Logger) *Router {
	return &Router{
		service:        svc,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

// RegisterRoutes mounts registration and login publicly and the profile
// endpoint behind the token middleware.
func (rt *Router) RegisterRoutes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.HandleFunc("/api/users", rt.withTimeout(commonhttp.RequireMethod(http.MethodPost)(rt.handleRegister)))
	mux.HandleFunc("/api/sessions", rt.withTimeout(commonhttp.RequireMethod(http.MethodPost)(rt.handleLogin)))
	mux.Handle("/api/profile", auth(http.HandlerFunc(rt.withTimeout(commonhttp.RequireMethod(http.MethodGet)(rt.handleProfile)))))
}

func (rt *Router) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return commonhttp.WithTimeout(rt.requestTimeout)(next)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	User  profileResponse `json:"user"`
	Token string          `json:"token"`
}

func toProfileResponse(p userdomain.Profile) profileResponse {
	return profileResponse{
		ID:        string(p.ID),
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		return
	}

	profile, err := rt.service.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toProfileResponse(profile))
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := rt.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, loginResponse{
		User:  toProfileResponse(result.User),
		Token: result.AccessToken,
	})
}

func (rt *Router) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization")
		return
	}

	profile, err := rt.service.Profile(r.Context(), userdomain.ID(claims.UserID))
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (rt *Router) writeServiceError(w http.ResponseWriter, err error) {
	if vErr, ok := service.AsValidationError(err); ok {
		commonhttp.WriteError(w, http.StatusBadRequest, vErr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrEmailTaken):
		commonhttp.WriteError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		commonhttp.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, commonerrors.ErrUserNotFound):
		commonhttp.WriteError(w, http.StatusNotFound, "user not found")
	default:
		rt.log.Errorf("auth handler error: %v", err)
		commonhttp.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
