package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName    = "admin_token"
	TokenDuration = 24 * time.Hour
	adminRole     = "admin"
)

var ErrUnauthorized = errors.New("invalid password")

// AuthHandler guards the admin surface with the shared admin password and
// the session cookie minted after it.
type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// CheckPassword compares the credential with the configured admin password.
func (h *AuthHandler) CheckPassword(credential string) error {
	if credential == "" || credential != h.cfg.AdminPassword {
		return ErrUnauthorized
	}
	return nil
}

func (h *AuthHandler) secret() []byte {
	if h.cfg.JWTSecret != "" {
		return []byte(h.cfg.JWTSecret)
	}
	return []byte(h.cfg.AdminPassword)
}

func (h *AuthHandler) GenerateToken() (string, error) {
	claims := jwt.MapClaims{
		"role": adminRole,
		"exp":  time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.secret())
}

func (h *AuthHandler) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
}

func (h *AuthHandler) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.secret(), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != adminRole {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// session returns the claims of the admin cookie in a raw Cookie header.
func (h *AuthHandler) session(cookieHeader string) (jwt.MapClaims, string, error) {
	if cookieHeader == "" {
		return nil, "Unauthorized: No token found", ErrUnauthorized
	}
	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return nil, "Unauthorized: Malformed cookie", ErrUnauthorized
	}
	for _, c := range cookies {
		if c.Name != CookieName {
			continue
		}
		claims, err := h.parse(c.Value)
		if err != nil {
			return nil, "Unauthorized: Invalid token", err
		}
		return claims, "", nil
	}
	return nil, "Unauthorized: No token found", ErrUnauthorized
}
