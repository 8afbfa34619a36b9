package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"todoTracker/internal/logger"
	repo "todoTracker/internal/repository"

	"go.uber.org/zap"
)

type Branch string

const (
	BranchSession   Branch = "session"
	BranchTransport Branch = "basic_auth"
	BranchHeader    Branch = "authorization_header"
	BranchAnonymous Branch = "anonymous"
)

const basicSchemePrefix = "Basic "

// Resolution итог определения пользователя и то, что резолвер увидел в запросе
type Resolution struct {
	Identity *Identity
	Branch   Branch

	SessionCookiePresent        bool
	TransportCredentialsPresent bool
	AuthorizationHeaderPresent  bool
	// имя запасного заголовка, если Authorization пуст, а он нет
	FallbackHeader string

	CredentialsChecked bool
	AttemptedLogin     string
	VerificationError  error
}

func (r *Resolution) Authenticated() bool {
	return r.Identity != nil
}

type Resolver struct {
	sessions        SessionStore
	users           UserFinder
	verifier        *Verifier
	cookieName      string
	fallbackHeaders []string
}

func NewResolver(sessions SessionStore, users UserFinder, verifier *Verifier, cookieName string, fallbackHeaders []string) *Resolver {
	return &Resolver{
		sessions:        sessions,
		users:           users,
		verifier:        verifier,
		cookieName:      cookieName,
		fallbackHeaders: fallbackHeaders,
	}
}

func (r *Resolver) CookieName() string {
	return r.cookieName
}

// Resolve: сессия, затем Basic-креды транспорта, затем заголовок Authorization
// (или запасной заголовок); первое успешное совпадение побеждает
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) *Resolution {
	res := &Resolution{Branch: BranchAnonymous}

	if identity := r.fromSession(ctx, req, res); identity != nil {
		res.Identity = identity
		res.Branch = BranchSession
		return res
	}

	username, password, transportOK := req.BasicAuth()
	if transportOK {
		res.TransportCredentialsPresent = true
		if identity := r.verify(ctx, res, username, password); identity != nil {
			res.Identity = identity
			res.Branch = BranchTransport
			return res
		}
	}

	header := req.Header.Get("Authorization")
	res.AuthorizationHeaderPresent = header != ""
	if header == "" {
		for _, name := range r.fallbackHeaders {
			if value := req.Header.Get(name); value != "" {
				header = value
				res.FallbackHeader = name
				break
			}
		}
	}

	// если транспорт разобрал Authorization, эти же креды уже проверены выше
	if header != "" && !transportOK {
		if login, secret, ok := ParseBasic(header); ok {
			if identity := r.verify(ctx, res, login, secret); identity != nil {
				res.Identity = identity
				res.Branch = BranchHeader
				return res
			}
		}
	}

	return res
}

func (r *Resolver) fromSession(ctx context.Context, req *http.Request, res *Resolution) *Identity {
	if r.sessions == nil || r.cookieName == "" {
		return nil
	}
	cookie, err := req.Cookie(r.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	res.SessionCookiePresent = true

	userID, err := r.sessions.Lookup(ctx, cookie.Value)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			logger.Warn("Auth: Ошибка чтения сессии", zap.Error(err))
		}
		return nil
	}

	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			logger.Warn("Auth: Ошибка загрузки пользователя сессии", zap.Error(err), zap.Int64("user_id", userID))
		}
		return nil
	}
	return IdentityFromUser(u)
}

func (r *Resolver) verify(ctx context.Context, res *Resolution, login, password string) *Identity {
	res.CredentialsChecked = true
	res.AttemptedLogin = login

	u, err := r.verifier.Verify(ctx, login, password)
	if err != nil {
		res.VerificationError = err
		if !errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("Auth: Ошибка проверки учётных данных", zap.Error(err))
		}
		return nil
	}
	res.VerificationError = nil
	return IdentityFromUser(u)
}

// ParseBasic разбирает "Basic base64(login:password)"; делит по первому двоеточию
func ParseBasic(header string) (string, string, bool) {
	if !strings.HasPrefix(header, basicSchemePrefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(basicSchemePrefix):]))
	if err != nil {
		return "", "", false
	}
	login, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", false
	}
	return login, password, true
}
