package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"agora/internal/domain"
)

const callerContextKey = "agora.caller"

// Auth extracts the caller identity from a bearer token issued by the
// external session provider. It never rejects a request itself: a missing or
// invalid token simply yields an unauthenticated caller, and each handler
// decides what that means.
type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// Middleware resolves the caller once per request and stashes it in the gin
// context for CallerFrom.
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(callerContextKey, a.callerFromRequest(c))
		c.Next()
	}
}

func (a *Auth) callerFromRequest(c *gin.Context) domain.Caller {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return domain.Caller{}
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Caller{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Caller{}
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Caller{}
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = domain.RoleMember
	}
	return domain.Caller{UserID: sub, Role: role}
}

// CallerFrom returns the caller resolved by the auth middleware.
func CallerFrom(c *gin.Context) domain.Caller {
	v, ok := c.Get(callerContextKey)
	if !ok {
		return domain.Caller{}
	}
	caller, _ := v.(domain.Caller)
	return caller
}

// localeFrom picks the response locale: explicit query parameter first, then
// the first Accept-Language tag.
func localeFrom(c *gin.Context) string {
	if l := c.Query("locale"); l != "" {
		return l
	}
	header := c.GetHeader("Accept-Language")
	if header == "" {
		return ""
	}
	first := strings.Split(header, ",")[0]
	return strings.TrimSpace(strings.Split(first, ";")[0])
}
