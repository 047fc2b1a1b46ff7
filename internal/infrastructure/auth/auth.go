package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/domain/user"
)

// ContextUserIDKey is the gin context key holding the authenticated user id.
const ContextUserIDKey = "user_id"

// Claims are the dashboard access-token claims.
type Claims struct {
	Email string `json:"email,omitempty"`
	Plan  string `json:"plan,omitempty"`
	Type  string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates the dashboard's self-signed JWTs. It
// satisfies user.TokenIssuer.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        zerolog.Logger
}

var _ user.TokenIssuer = (*TokenManager)(nil)

// NewTokenManager creates a token manager from configuration.
func NewTokenManager(cfg *config.Config, log zerolog.Logger) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.JWTAccessTTL,
		refreshTTL: cfg.JWTRefreshTTL,
		log:        log.With().Str("component", "token_manager").Logger(),
	}
}

// IssueAccess mints an access token carrying the user's email and plan.
func (m *TokenManager) IssueAccess(u *user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: u.Email,
		Plan:  string(u.Plan),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(m.secret)
}

// IssueRefresh mints a long-lived refresh token carrying only the user id.
func (m *TokenManager) IssueRefresh(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(m.secret)
}

// Validate parses and verifies a token, returning its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS512 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Middleware enforces a Bearer access token and stores the user id in the
// request context. Refresh tokens are rejected here.
func (m *TokenManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := m.Validate(tokenString)
		if err != nil {
			m.log.Debug().Err(err).Msg("jwt validation failed")
			abortUnauthorized(c, "invalid token")
			return
		}
		if claims.Type == "refresh" {
			abortUnauthorized(c, "refresh token not accepted here")
			return
		}

		c.Set(ContextUserIDKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
