package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	InterServiceTokenHeader = "X-Internal-Service-Token"
	// SourceServiceContextKey - ключ gin-контекста с именем вызывающего сервиса (subject токена).
	SourceServiceContextKey = "source_service"
)

var (
	ErrTokenExpired   = errors.New("inter-service token expired")
	ErrTokenMalformed = errors.New("inter-service token malformed")
	ErrTokenInvalid   = errors.New("inter-service token invalid")
)

// VerifyInterServiceToken checks an HS256 token signed with secret and returns
// its subject.
func VerifyInterServiceToken(tokenString, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrTokenMalformed
		default:
			return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// InterServiceAuthMiddleware требует валидный межсервисный JWT в заголовке
// X-Internal-Service-Token. С пустым secret проверка выключена.
func InterServiceAuthMiddleware(secret string, logger *zap.Logger) gin.HandlerFunc {
	if secret == "" {
		logger.Warn("INTER_SERVICE_SECRET is empty, inter-service auth disabled")
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		log := logger.With(zap.String("path", c.Request.URL.Path))

		tokenString := c.GetHeader(InterServiceTokenHeader)
		if tokenString == "" {
			log.Warn("X-Internal-Service-Token header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Missing inter-service token"})
			return
		}

		subject, err := VerifyInterServiceToken(tokenString, secret)
		if err != nil {
			msg := "Unauthorized: Invalid inter-service token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "Unauthorized: Inter-service token expired"
			}
			log.Warn("Inter-service token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		if subject != "" {
			c.Set(SourceServiceContextKey, subject)
		} else {
			log.Warn("Inter-service token authorized but subject (source service) is missing")
		}
		c.Next()
	}
}
