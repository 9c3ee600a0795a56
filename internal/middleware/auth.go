package middleware

import (
	"net/http"
	"os"
	"strings"

	"backend/internal/workflow"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const actorContextKey = "actor"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// RequireAuth validates the bearer token and builds the workflow.Actor from
// its claims. The actor is the only identity workflow code ever sees; nothing
// downstream reads session state. Missing or malformed claims yield an actor
// with no capabilities.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authorization is missing"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid authorization format. Expected 'Bearer <token>'"))
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token claims"))
			return
		}

		c.Set(actorContextKey, actorFromClaims(claims))
		c.Next()
	}
}

// actorFromClaims builds the actor, failing closed: anything absent or of the
// wrong type simply stays zero.
func actorFromClaims(claims jwt.MapClaims) workflow.Actor {
	actor := workflow.Actor{Permisos: []string{}}

	if sub, ok := claims["sub"].(float64); ok {
		actor.ID = int64(sub)
	}
	if rol, ok := claims["rol_id"].(float64); ok {
		actor.RolID = int(rol)
	}
	if raw, ok := claims["permisos"].([]interface{}); ok {
		for _, p := range raw {
			if code, ok := p.(string); ok {
				actor.Permisos = append(actor.Permisos, code)
			}
		}
	}

	return actor
}

// ActorFromContext returns the authenticated actor set by RequireAuth. The
// zero actor (no capabilities) is returned when authentication never ran.
func ActorFromContext(c *gin.Context) workflow.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(workflow.Actor); ok {
			return actor
		}
	}
	return workflow.Actor{}
}
