package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arnavshah/labour-scheduler/pkg/auth"
	"github.com/arnavshah/labour-scheduler/pkg/labour"
	"github.com/arnavshah/labour-scheduler/pkg/logging"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Svc       *labour.Service
	Users     repository.UserRepo
	JWTSecret []byte
	APISecret []byte
	Log       zerolog.Logger
}

// APIError is the body of every error response
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
)

func NewAPIError(statusCode int, code, message, details string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message, Details: details}
}

// RespondWithError sends a standardized JSON error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{"error": err})
	c.Abort()
}

// toAPIError maps engine errors onto HTTP responses. Data store details are
// not echoed to clients.
func toAPIError(err error, message string) *APIError {
	switch {
	case errors.Is(err, labour.ErrNotFound):
		return NewAPIError(http.StatusNotFound, ErrCodeNotFound, message+": not found", err.Error())
	case errors.Is(err, labour.ErrShiftOverlap),
		errors.Is(err, labour.ErrInvalidTransition),
		errors.Is(err, labour.ErrTaskNotPending):
		return NewAPIError(http.StatusConflict, ErrCodeConflict, message, err.Error())
	case errors.Is(err, labour.ErrValidation):
		return NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, message, err.Error())
	}
	return NewAPIError(http.StatusInternalServerError, ErrCodeInternalServerError, message, "Internal error")
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	apiErr := toAPIError(err, message)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondWithError(c, apiErr)
}

func badRequest(c *gin.Context, err error) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Invalid request payload", err.Error()))
}

func bearer(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = token[7:]
	}
	return token
}

// AuthMiddleware verifies the JWT and stores the caller's user id
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			RespondWithError(c, NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, "Authorization header required", ""))
			return
		}

		claims, err := auth.VerifyToken(h.JWTSecret, token)
		if err != nil {
			RespondWithError(c, NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid token", ""))
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("userRole", string(claims.Role))
		c.Next()
	}
}

// APIKeyMiddleware verifies an HMAC API key issued by cmd/keygen
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			key = c.GetHeader("X-API-Key")
		}
		if key == "" {
			RespondWithError(c, NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, "API Key required", ""))
			return
		}

		userID, err := auth.VerifyHMACKey(h.APISecret, key)
		if err != nil {
			RespondWithError(c, NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid API Key signature", ""))
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// Login exchanges credentials for a bearer token
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.Users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			_ = c.Error(err)
			RespondWithError(c, NewAPIError(http.StatusInternalServerError, ErrCodeInternalServerError, "Could not log in", "Internal error"))
			return
		}
		RespondWithError(c, NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid credentials", ""))
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		RespondWithError(c, NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid credentials", ""))
		return
	}

	token, err := auth.CreateToken(h.JWTSecret, user)
	if err != nil {
		RespondWithError(c, NewAPIError(http.StatusInternalServerError, ErrCodeInternalServerError, "Could not create token", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "role": user.Role})
}

// NewRouter wires every route. An empty origin list allows any origin.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger(h.Log))

	config := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
		config.AllowCredentials = true
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"}
	r.Use(cors.New(config))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Labour Scheduling API",
			"version": "1.0.0",
		})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/auth/login", h.Login)

	api := r.Group("/api/labour")
	api.Use(h.AuthMiddleware())
	{
		api.POST("/workers", h.CreateWorker)
		api.GET("/workers", h.GetWorkers)
		api.GET("/workers/:id", h.GetWorker)
		api.PATCH("/workers/:id", h.UpdateWorker)

		api.POST("/tasks", h.CreateTask)
		api.GET("/tasks", h.GetTasks)

		api.POST("/shifts", h.CreateShift)
		api.PATCH("/shifts/:id/status", h.UpdateShiftStatus)

		api.GET("/alerts", h.GetAlerts)
		api.PATCH("/alerts/:id/read", h.MarkAlertRead)

		api.GET("/analytics/dashboard", h.GetDashboardAnalytics)
		api.GET("/analytics/recommendations", h.GetOptimizationRecommendations)
		api.GET("/analytics/trends", h.AnalyzeLaborTrends)
	}

	ingest := r.Group("/ingest")
	ingest.Use(h.APIKeyMiddleware())
	{
		ingest.POST("/analytics", h.IngestAnalytics)
	}

	return r
}
