package middleware

import (
	"errors"
	"fmt"
	"strings"

	"go-workforce/internal/access"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/contextutil"
	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthMiddleware verifies an HS256 bearer token (or the access_token cookie)
// and exposes its employee_id and role claims to the rest of the chain.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			errObj := apperror.ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = apperror.ErrTokenExpired
			}
			abortWith(c, errObj)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, apperror.ErrInvalidToken)
			return
		}

		rawID, _ := claims["employee_id"].(string)
		employeeID, err := uuid.Parse(rawID)
		if err != nil {
			abortWith(c, apperror.ErrInvalidToken)
			return
		}

		rawRole, _ := claims["role"].(string)
		role, ok := access.ParseRole(rawRole)
		if !ok {
			abortWith(c, apperror.ErrInvalidToken)
			return
		}

		c.Set(string(ContextEmployeeID), employeeID.String())
		c.Set(string(ContextRole), string(role))
		c.Request = c.Request.WithContext(contextutil.WithEmployeeID(c.Request.Context(), employeeID.String()))

		c.Next()
	}
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Abort(c, err.HTTPStatus, err.Code, err.Message)
}
