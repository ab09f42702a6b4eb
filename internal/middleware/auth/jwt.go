package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthStreamer is the authenticated streamer extracted from the session
// token. Session issuance lives outside this service; only validation
// happens here.
type AuthStreamer struct {
	StreamerID int64  `json:"streamer_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
}

const streamerContextKey = "authenticated_streamer"

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret    string
	Logger    *zap.Logger
	SkipPaths []string // Paths to skip JWT validation
}

// JWTMiddleware creates a middleware that validates streamer session tokens
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, skipPath := range config.SkipPaths {
				if strings.HasPrefix(path, skipPath) {
					return next(c)
				}
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				config.Logger.Warn("Missing authorization header",
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Authorization header required",
					"code":  "MISSING_AUTH_HEADER",
				})
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				config.Logger.Warn("Invalid authorization header format",
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid authorization header format. Expected: Bearer <token>",
					"code":  "INVALID_AUTH_FORMAT",
				})
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(config.Secret), nil
			})

			if err != nil || !token.Valid {
				config.Logger.Warn("JWT validation failed",
					zap.Error(err),
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid or expired token",
					"code":  "INVALID_TOKEN",
				})
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid token claims",
					"code":  "INVALID_TOKEN",
				})
			}

			streamerID, ok := claims["streamer_id"].(float64)
			if !ok || streamerID <= 0 {
				config.Logger.Warn("Token missing streamer_id claim",
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Token missing streamer identity",
					"code":  "INVALID_TOKEN",
				})
			}

			username, _ := claims["username"].(string)
			email, _ := claims["email"].(string)

			c.Set(streamerContextKey, &AuthStreamer{
				StreamerID: int64(streamerID),
				Username:   username,
				Email:      email,
			})

			return next(c)
		}
	}
}

// GetStreamerFromContext returns the authenticated streamer set by the
// middleware.
func GetStreamerFromContext(c echo.Context) (*AuthStreamer, error) {
	streamer, ok := c.Get(streamerContextKey).(*AuthStreamer)
	if !ok || streamer == nil {
		return nil, fmt.Errorf("no authenticated streamer in context")
	}
	return streamer, nil
}
