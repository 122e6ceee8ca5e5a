package middleware

import (
	"strings"

	"godeliver/internal/models"
	"godeliver/internal/services"
	"godeliver/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthRequired validates the bearer token and sets the user context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*JWTClaims)
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_type", claims.UserType)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// StaffRequired ensures the user is an employee with a role that may
// manage rides.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if !actor.IsStaff() {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminRequired ensures the user is an admin employee.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if actor.UserType != models.UserTypeEmployee || actor.Role != models.RoleAdmin {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetActor rebuilds the acting user from the values AuthRequired put
// on the context.
func GetActor(c *gin.Context) (services.Actor, bool) {
	rawID, exists := c.Get("user_id")
	if !exists {
		return services.Actor{}, false
	}
	userID, ok := rawID.(primitive.ObjectID)
	if !ok {
		return services.Actor{}, false
	}

	actor := services.Actor{ID: userID}
	if userType, ok := c.Get("user_type"); ok {
		if s, ok := userType.(string); ok {
			actor.UserType = models.UserType(s)
		}
	}
	if role, ok := c.Get("role"); ok {
		if s, ok := role.(string); ok {
			actor.Role = models.EmployeeRole(s)
		}
	}

	return actor, true
}
