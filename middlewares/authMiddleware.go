package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares.
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
)

var (
	errNoToken       = errors.New("no authorization token provided")
	errInvalidClaims = errors.New("invalid token claims")
)

// AuthMiddleware rejects requests without a valid HS256 bearer token signed
// with secret and stores the token's user id in the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, secret); err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware lets anonymous requests through. A token that is
// present must still be valid.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := authenticate(c, secret)
		if err != nil && !errors.Is(err, errNoToken) {
			abortUnauthorized(c, err)
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, secret string) error {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader == "" {
		return errNoToken
	}

	// Extracting token from "Bearer <token>" format
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return errNoToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return fmt.Errorf("invalid authorization token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errInvalidClaims
	}
	userID := claimString(claims, "user_id")
	if userID == "" {
		userID = claimString(claims, "sub")
	}
	if userID == "" {
		return errInvalidClaims
	}

	c.Set(UserIDKey, userID)
	if email := claimString(claims, "email"); email != "" {
		c.Set(UserEmailKey, email)
	}
	return nil
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

func abortUnauthorized(c *gin.Context, err error) {
	msg := "Invalid authorization token"
	switch {
	case errors.Is(err, errNoToken):
		msg = "No authorization token provided"
	case errors.Is(err, errInvalidClaims):
		msg = "Invalid token claims"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
}

// CurrentUserID returns the authenticated user id, or "" for anonymous requests.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
