package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cubis-academy-backend/session-service/middleware"
	"cubis-academy-backend/shared/config"
	"cubis-academy-backend/shared/database/models"
	"cubis-academy-backend/shared/sessions"
	utils "cubis-academy-backend/shared/utils/auth"
)

// SessionHandler wires the session components behind the HTTP surface. All
// dependencies are injected once at startup; nothing is re-created per
// request.
type SessionHandler struct {
	db         *gorm.DB
	store      sessions.Store
	cache      sessions.SessionCache
	validator  *sessions.Validator
	checker    *sessions.DeviceChecker
	revoker    *sessions.RevocationManager
	enumerator *sessions.Enumerator
}

func NewSessionHandler(
	db *gorm.DB,
	store sessions.Store,
	cache sessions.SessionCache,
	validator *sessions.Validator,
	checker *sessions.DeviceChecker,
	revoker *sessions.RevocationManager,
	enumerator *sessions.Enumerator,
) *SessionHandler {
	return &SessionHandler{
		db:         db,
		store:      store,
		cache:      cache,
		validator:  validator,
		checker:    checker,
		revoker:    revoker,
		enumerator: enumerator,
	}
}

// Login Request/Response structs
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@cubisacademy.com"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
}

// Ensure Request struct
type EnsureSessionRequest struct {
	DeviceID string `json:"device_id"`
}

// Validate Request struct
type ValidateRequest struct {
	Token string `json:"token" binding:"required"`
}

// Validate Device Request struct
type ValidateDeviceRequest struct {
	DeviceID string `json:"device_id"`
}

// POST /api/auth/login
// @Summary User login
// @Description Authenticate a user, issue a token and create its session record
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} handlers.LoginResponse "Successful login"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find User by email
	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Status != "ACTIVE" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is inactive"})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	expiresAt := time.Now().Add(config.GetConfig().GetJWTExpireDuration())

	// Create the session record and warm the cache
	record, _, err := h.store.Ensure(c.Request.Context(), sessions.EnsureParams{
		UserID:       user.ID,
		SessionToken: token,
		DeviceID:     c.GetHeader("X-Device-ID"),
		IPAddress:    c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
		LoginMethod:  "password",
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create session"})
		return
	}
	if err := h.cache.Put(c.Request.Context(), record); err != nil {
		log.Printf("❌ Could not warm session cache at login: %v", err)
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:        user.ID.String(),
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Status:    user.Status,
		},
	})
}

// POST /api/auth/logout
// @Summary User logout
// @Description Revoke the caller's current session
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out successfully"
// @Failure 401 {object} map[string]string "No active session"
// @Failure 500 {object} map[string]string "Could not logout"
// @Router /auth/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	sctx, ok := middleware.GetSessionContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	record, err := h.store.GetByToken(c.Request.Context(), sctx.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session for this token"})
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), sctx.UserID, record.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// POST /api/sessions/ensure
// @Summary Ensure session record
// @Description Idempotently ensure a session record exists for the caller's token; rejects revoked sessions
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ensure body EnsureSessionRequest false "Optional device fingerprint"
// @Success 200 {object} map[string]string "Session already exists"
// @Success 201 {object} map[string]string "Session created"
// @Failure 401 {object} map[string]string "Session revoked"
// @Failure 500 {object} map[string]string "Could not ensure session"
// @Router /sessions/ensure [post]
func (h *SessionHandler) EnsureSession(c *gin.Context) {
	sctx, ok := middleware.GetSessionContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req EnsureSessionRequest
	_ = c.ShouldBindJSON(&req)
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = sctx.DeviceID
	}

	record, created, err := h.store.Ensure(c.Request.Context(), sessions.EnsureParams{
		UserID:       sctx.UserID,
		SessionToken: sctx.Token,
		DeviceID:     deviceID,
		IPAddress:    sctx.IPAddress,
		UserAgent:    sctx.UserAgent,
		LoginMethod:  "password",
		ExpiresAt:    time.Now().Add(config.GetConfig().GetJWTExpireDuration()),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not ensure session"})
		return
	}

	// A revoked token never comes back to life through ensure.
	if !record.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":  "Session has been revoked",
			"status": "revoked",
		})
		return
	}

	if err := h.cache.Put(c.Request.Context(), record); err != nil {
		log.Printf("❌ Could not warm session cache on ensure: %v", err)
	}

	status := "already-exists"
	httpStatus := http.StatusOK
	if created {
		status = "created"
		httpStatus = http.StatusCreated
	}
	c.JSON(httpStatus, gin.H{
		"status":     status,
		"session_id": record.ID,
		"expires_at": record.ExpiresAt,
	})
}

// POST /api/sessions/validate
// @Summary Validate session token
// @Description Validate a session token and return the verdict with its reason
// @Tags sessions
// @Accept json
// @Produce json
// @Param validate body ValidateRequest true "Token to validate"
// @Success 200 {object} sessions.ValidationResult "Validation verdict"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 503 {object} map[string]string "Session backend unavailable"
// @Router /sessions/validate [post]
func (h *SessionHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.validator.Validate(c.Request.Context(), req.Token)
	if err != nil {
		// Fail closed: an unreachable backend is a deny, never a valid.
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"valid": false,
			"error": "Session backend unavailable, please retry",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// POST /api/sessions/validate-device
// @Summary Validate device binding
// @Description Check the caller's device fingerprint against the session binding; binds on first use
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param device body ValidateDeviceRequest false "Device fingerprint (falls back to X-Device-ID header)"
// @Success 200 {object} sessions.DeviceCheckResult "Device accepted"
// @Failure 400 {object} map[string]string "Device fingerprint missing"
// @Failure 401 {object} sessions.DeviceCheckResult "Forced logout (mismatch, expired or revoked)"
// @Failure 503 {object} map[string]string "Session backend unavailable"
// @Router /sessions/validate-device [post]
func (h *SessionHandler) ValidateDevice(c *gin.Context) {
	sctx, ok := middleware.GetSessionContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ValidateDeviceRequest
	_ = c.ShouldBindJSON(&req)
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = sctx.DeviceID
	}
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Device fingerprint is required"})
		return
	}

	result, err := h.checker.CheckDevice(c.Request.Context(), sctx, deviceID)
	if err != nil {
		// Fail closed on infrastructure problems.
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"ok":    false,
			"error": "Session backend unavailable, please retry",
		})
		return
	}

	if !result.OK {
		c.JSON(http.StatusUnauthorized, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
