package middleware

import (
	"context"
	"hirfa/pkg/model"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

const principalKey contextKey = "principal"

// TokenVerifier turns a bearer token into the caller it was issued to.
type TokenVerifier interface {
	VerifyToken(token string) (model.Principal, error)
}

type Authenticator struct {
	verifier TokenVerifier
}

func NewAuthenticator(verifier TokenVerifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// Require wraps a route so it only runs for an authenticated caller holding
// one of roles. With no roles any authenticated caller passes.
func (a *Authenticator) Require(next httprouter.Handle, roles ...model.Role) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, ok := a.authenticate(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if len(roles) > 0 && !hasRole(principal, roles) {
			writeJSONError(w, http.StatusForbidden, "Forbidden")
			return
		}

		next(w, r.WithContext(WithPrincipal(r.Context(), principal)), ps)
	}
}

func (a *Authenticator) authenticate(r *http.Request) (model.Principal, bool) {
	token := BearerToken(r)
	if token == "" {
		return model.Principal{}, false
	}
	principal, err := a.verifier.VerifyToken(token)
	if err != nil {
		return model.Principal{}, false
	}
	return principal, true
}

// BearerToken reads the Authorization header, falling back to the token
// query parameter that browsers use for websocket upgrades.
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

func hasRole(p model.Principal, roles []model.Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok
}
