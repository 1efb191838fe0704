// Package jwtmw issues and validates the HS256 bearer tokens used by the API.
package jwtmw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"imagegen_backend/internal/platform/http/respond"
)

// ContextUserID is the gin context key holding the authenticated user id (uint).
const ContextUserID = "userID"

var errMissingSubject = errors.New("token has no numeric sub claim")

// AuthRequired returns a Gin middleware that validates the bearer token and
// stores the user id from the "sub" claim under ContextUserID.
func AuthRequired(secret string, rw *respond.Responder) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if len(key) == 0 {
			// JWT_SECRET 未設定はサーバー側の設定ミス
			rw.Abort(c, http.StatusInternalServerError, "Server misconfigured", nil)
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			rw.Abort(c, http.StatusUnauthorized, "Not authorized, no token", nil)
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		userID, err := parseSubject(tokenStr, key)
		if err != nil {
			rw.Abort(c, http.StatusUnauthorized, "Not authorized, token failed", err)
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id stored by AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func parseSubject(tokenStr string, key []byte) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// HMAC 以外の署名アルゴリズムは拒否
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return key, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errMissingSubject
	}
	// JSON の数値は float64 としてデコードされる
	sub, ok := claims["sub"].(float64)
	if !ok || sub < 1 {
		return 0, errMissingSubject
	}
	return uint(sub), nil
}
