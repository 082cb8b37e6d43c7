package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "studymate/internal/errors"
)

// StudentIDKey is the gin context key holding the authenticated student id.
const StudentIDKey = "studentID"

const bearerPrefix = "Bearer "

// TokenValidator resolves a bearer token to a student id.
type TokenValidator interface {
	Validate(token string) (uint, bool)
}

// AuthMiddleware verifies the bearer token and binds the student id to the
// context. Request bodies never carry an owner id; this is the only source.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header must be 'Bearer <token>'"))
			return
		}

		raw := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if raw == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header must be 'Bearer <token>'"))
			return
		}

		studentID, ok := tokens.Validate(raw)
		if !ok {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(StudentIDKey, studentID)
		c.Next()
	}
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
