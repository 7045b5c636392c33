package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims carried by QRKot access tokens.
type TokenClaims struct {
	Superuser bool   `json:"superuser,omitempty"`
	Locale    string `json:"locale,omitempty"`
	jwt.RegisteredClaims
}

type userKey string

const (
	userIDKey    userKey = "user_id"
	superuserKey userKey = "superuser"
)

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret         []byte
	issuer         string
	firstSuperuser string
}

func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer}
}

// WithFirstSuperuser grants superuser rights to userID regardless of the
// superuser claim in its tokens.
func (t *TokenIssuer) WithFirstSuperuser(userID string) *TokenIssuer {
	t.firstSuperuser = strings.TrimSpace(userID)
	return t
}

// Sign mints a token for userID valid for ttl.
func (t *TokenIssuer) Sign(userID string, superuser bool, locale string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("token subject is required")
	}
	now := time.Now()
	claims := TokenClaims{
		Superuser: superuser,
		Locale:    locale,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses token and checks signature, issuer and expiry.
func (t *TokenIssuer) Verify(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("verify token: missing subject")
	}
	if t.firstSuperuser != "" && claims.Subject == t.firstSuperuser {
		claims.Superuser = true
	}
	return claims, nil
}

// Authenticate attaches the caller identity when a valid bearer token is
// present. Requests without a token pass through anonymously; an invalid
// token is rejected.
func Authenticate(issuer *TokenIssuer, onError func(w http.ResponseWriter, r *http.Request, status int)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				onError(w, r, http.StatusUnauthorized)
				return
			}
			claims, err := issuer.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				onError(w, r, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			ctx = context.WithValue(ctx, superuserKey, claims.Superuser)
			if claims.Locale != "" && r.Header.Get("X-Locale") == "" && r.Header.Get("Accept-Language") == "" {
				ctx = context.WithValue(ctx, LocaleKey, normalizeLocale(claims.Locale))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(onError func(w http.ResponseWriter, r *http.Request, status int)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == "" {
				onError(w, r, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperuser rejects anonymous requests with 401 and regular users with 403.
func RequireSuperuser(onError func(w http.ResponseWriter, r *http.Request, status int)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case UserIDFromContext(r.Context()) == "":
				onError(w, r, http.StatusUnauthorized)
			case !IsSuperuser(r.Context()):
				onError(w, r, http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func IsSuperuser(ctx context.Context) bool {
	v, _ := ctx.Value(superuserKey).(bool)
	return v
}

func ContextWithUserID(ctx context.Context, userID string, superuser bool) context.Context {
	if strings.TrimSpace(userID) == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, superuserKey, superuser)
}
