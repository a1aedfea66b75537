package http

import (
	"net/http"
	"strings"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"

	"github.com/gin-gonic/gin"
)

const authPayloadKey = "authorization_payload"

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Fields  []domain.FieldError `json:"fields"`
}

func newErrorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: message})
}

func newValidationErrorResponse(c *gin.Context, verrs domain.ValidationErrors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, validationErrorResponse{
		Success: false,
		Error:   "validation failed",
		Fields:  verrs,
	})
}

func getAuthPayload(c *gin.Context, key string) (*domain.TokenPayload, bool) {
	value, exists := c.Get(key)
	if !exists {
		return nil, false
	}
	payload, ok := value.(*domain.TokenPayload)
	return payload, ok
}

// AuthMiddleware verifies the bearer token and stores its payload on the
// request context.
func AuthMiddleware(tokenService ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			newErrorResponse(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			newErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		payload, err := tokenService.VerifyToken(parts[1])
		if err != nil {
			newErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(authPayloadKey, payload)
		c.Next()
	}
}

// AdminMiddleware gates the back-office routes. Must run after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, exists := getAuthPayload(c, authPayloadKey)
		if !exists {
			newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if payload.Role != domain.Admin {
			newErrorResponse(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}
