package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	AuthService       AuthService
	cookie            CookieConfig
	tasksPath         string
	ownershipEnforced bool
}

func NewAuthHandler(authService AuthService, cookie CookieConfig, tasksPath string, ownershipEnforced bool) *AuthHandler {
	return &AuthHandler{
		AuthService:       authService,
		cookie:            cookie,
		tasksPath:         tasksPath,
		ownershipEnforced: ownershipEnforced,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request dto.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		writeError(w, service.NewValidationError("body", "ожидается JSON с username и password"))
		return
	}

	token, identity, err := h.AuthService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, h.AuthService.SessionTTL()))
	writeJSON(w, http.StatusOK, userResponse(identity))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		token = cookie.Value
	}

	if err := h.AuthService.Logout(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	responseWithJSON(w, http.StatusOK, toPayload("logged_out", true))
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, err := h.AuthService.CurrentUser(auth.ResolutionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(identity))
}

// AuthTest отчёт о том, что резолвер увидел в запросе; доступен без авторизации
func (h *AuthHandler) AuthTest(w http.ResponseWriter, r *http.Request) {
	res := auth.ResolutionFrom(r.Context())

	report := dto.AuthTestResponse{
		ServerSoftware:       "todoTracker",
		IsHTTPS:              isHTTPS(r),
		IsUserLoggedIn:       res.Authenticated(),
		AuthBranch:           string(res.Branch),
		SessionCookiePresent: dto.YesNo(res.SessionCookiePresent),
		AuthHeaderPresent:    dto.YesNo(res.AuthorizationHeaderPresent),
		TransportAuthPresent: dto.YesNo(res.TransportCredentialsPresent),
		AuthHeaderStatus:     headerStatus(res),
		AuthenticationTest:   credentialTest(res),
		OwnershipEnforced:    h.ownershipEnforced,
		RestURL:              requestScheme(r) + "://" + r.Host + h.tasksPath,
	}
	if res.Identity != nil {
		report.CurrentUserID = res.Identity.ID
		report.AuthenticatedUser = res.Identity.Username
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *AuthHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	} else {
		cookie.MaxAge = int(ttl.Seconds())
	}
	return cookie
}

func userResponse(identity *auth.Identity) dto.UserResponse {
	return dto.UserResponse{
		ID:          identity.ID,
		Username:    identity.Username,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	}
}

func headerStatus(res *auth.Resolution) string {
	switch {
	case res.AuthorizationHeaderPresent:
		return "Authorization header found"
	case res.FallbackHeader != "":
		return "Authorization header found in " + res.FallbackHeader
	default:
		return "No Authorization header found"
	}
}

func credentialTest(res *auth.Resolution) string {
	switch {
	case res.CredentialsChecked && res.VerificationError == nil:
		return "SUCCESS - Valid credentials"
	case res.CredentialsChecked && errors.Is(res.VerificationError, auth.ErrInvalidCredentials):
		return "FAILED - " + res.VerificationError.Error()
	case res.CredentialsChecked:
		return "FAILED - identity store unavailable"
	case res.Branch == auth.BranchSession:
		return "Not checked - session matched first"
	default:
		return "No credentials provided"
	}
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

func requestScheme(r *http.Request) string {
	if isHTTPS(r) {
		return "https"
	}
	return "http"
}
