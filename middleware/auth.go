package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"heavymetal/auth"
	"heavymetal/store"
	"heavymetal/types"
)

// userKey is the gin context key the authenticated user is stored under
const userKey = "currentUser"

// RequireAuth resolves the bearer token to a user and stores it in the
// request context. The failure message is identical for missing, malformed,
// expired and unknown-user tokens.
func RequireAuth(tokens *auth.TokenService, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(c)
			return
		}

		username, err := tokens.Verify(token)
		if err != nil {
			unauthorized(c)
			return
		}

		user, err := st.GetUserByName(username)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireActive rejects requests from soft-disabled accounts.
// Must run after RequireAuth.
func RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			unauthorized(c)
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "inactive user",
			})
			return
		}
		c.Next()
	}
}

// RequireSuperuser rejects non-superuser accounts.
// Must run after RequireAuth and RequireActive.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			unauthorized(c)
			return
		}
		if !user.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "not enough privileges",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by RequireAuth, or nil
func CurrentUser(c *gin.Context) *types.User {
	value, exists := c.Get(userKey)
	if !exists {
		return nil
	}
	user, _ := value.(*types.User)
	return user
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "could not validate credentials",
	})
}
