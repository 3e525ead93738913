package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"heavymetal/auth"
	"heavymetal/middleware"
	"heavymetal/store"
	"heavymetal/types"
)

// AuthHandler handles login, registration and account endpoints
type AuthHandler struct {
	store  *store.Store
	tokens *auth.TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(st *store.Store, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{store: st, tokens: tokens}
}

// credentialsRequest is the request body shared by login and register
type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies a credential pair and returns a bearer token. The failure
// response is identical for unknown usernames and wrong passwords so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "username and password are required",
		})
		return
	}

	user, err := h.store.GetUserByName(req.Username)
	if err != nil {
		invalidCredentials(c)
		return
	}

	if !auth.VerifyPassword(user.HashedPassword, req.Password) {
		invalidCredentials(c)
		return
	}

	token, err := h.tokens.Issue(user.Name)
	if err != nil {
		log.Error("failed to issue token", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to issue token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
	})
}

// Register creates a new active, non-superuser account
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "username and password are required",
		})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid password",
			"details": err.Error(),
		})
		return
	}

	user := types.User{
		UUID:           uuid.New().String(),
		Name:           req.Username,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    false,
	}

	if err := h.store.CreateUser(user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "username already exists",
			})
			return
		}
		log.Error("failed to create user", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user created successfully",
	})
}

// Profile returns the authenticated user's username
func (h *AuthHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"username": user.Name,
	})
}

// Superuser returns the authenticated superuser's username
func (h *AuthHandler) Superuser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"username": user.Name,
	})
}

func invalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "invalid username or password",
	})
}
