package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

const bearerPrefix = "bearer "

// bearerToken prefers the Authorization header and falls back to a token
// field sent in the form body or query string.
func bearerToken(r *http.Request, fallback string) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	if fallback != "" {
		return fallback
	}
	return strings.TrimSpace(r.FormValue("token"))
}

func (rt *Router) authenticate(ctx context.Context, r *http.Request, fallback string) (string, error) {
	token := bearerToken(r, fallback)
	if token == "" {
		return "", domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("missing bearer token"))
	}
	user, err := rt.accounts.Authenticate(ctx, token)
	if err != nil {
		return "", err
	}
	setRequestUser(ctx, user)
	return user, nil
}

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	if err := rt.accounts.Register(r.Context(), email, password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "User registered successfully"})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	token, err := rt.accounts.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (rt *Router) me(w http.ResponseWriter, r *http.Request) {
	email, err := rt.authenticate(r.Context(), r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}
