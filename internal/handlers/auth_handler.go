package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/models"
)

type AuthHandler struct {
	db        *gorm.DB
	tokens    *auth.TokenService
	blacklist auth.Blacklist
}

func NewAuthHandler(db *gorm.DB, tokens *auth.TokenService, blacklist auth.Blacklist) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, blacklist: blacklist}
}

// --------- Requests ---------

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Type     string `json:"type" binding:"required"`
}

// --------- Handlers ---------

// Login checks the credentials against the entity table selected by the
// role and answers with a bearer token. Bad email and bad password get the
// same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if !auth.ValidRole(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_role"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	id, hash, err := h.findCredentials(req.Type, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, err := h.tokens.Generate(auth.Principal{Role: req.Type, ID: id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	h.respondWithToken(c, token)
}

// Me returns the authenticated principal's own record.
func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.Principal(c)

	switch principal.Role {
	case auth.RoleGym:
		var gym models.Gym
		if err := h.db.First(&gym, principal.ID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "principal_not_found"})
			return
		}
		c.JSON(http.StatusOK, gym)

	case auth.RoleInstructor:
		var instructor models.Instructor
		if err := h.db.First(&instructor, principal.ID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "principal_not_found"})
			return
		}
		c.JSON(http.StatusOK, instructor)

	case auth.RoleClient:
		var client models.Client
		if err := h.db.
			Preload("EmergencyContacts").
			Preload("MedicalConditions").
			First(&client, principal.ID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "principal_not_found"})
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

// Logout revokes the presented token's jti for its remaining lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID := c.MustGet(middleware.ContextTokenID).(string)
	exp := c.MustGet(middleware.ContextTokenExp).(time.Time)

	if err := h.blacklist.Revoke(c.Request.Context(), tokenID, time.Until(exp)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_revoke_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// Refresh revokes the presented token and issues a fresh one for the same
// principal.
func (h *AuthHandler) Refresh(c *gin.Context) {
	principal := middleware.Principal(c)
	tokenID := c.MustGet(middleware.ContextTokenID).(string)
	exp := c.MustGet(middleware.ContextTokenExp).(time.Time)

	if err := h.blacklist.Revoke(c.Request.Context(), tokenID, time.Until(exp)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_revoke_token"})
		return
	}

	token, err := h.tokens.Generate(principal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	h.respondWithToken(c, token)
}

// --------- Helpers ---------

func (h *AuthHandler) findCredentials(role, email string) (uint, string, error) {
	switch role {
	case auth.RoleGym:
		var gym models.Gym
		if err := h.db.Where("email = ?", email).First(&gym).Error; err != nil {
			return 0, "", err
		}
		return gym.ID, gym.PasswordHash, nil

	case auth.RoleInstructor:
		var instructor models.Instructor
		if err := h.db.Where("email = ?", email).First(&instructor).Error; err != nil {
			return 0, "", err
		}
		return instructor.ID, instructor.PasswordHash, nil

	default:
		var client models.Client
		if err := h.db.Where("email = ?", email).First(&client).Error; err != nil {
			return 0, "", err
		}
		return client.ID, client.PasswordHash, nil
	}
}

func (h *AuthHandler) respondWithToken(c *gin.Context, token string) {
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(h.tokens.TTL().Seconds()),
	})
}
