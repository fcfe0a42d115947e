package handlers

import (
	"errors"
	"net/http"

	"task_tracker/internal/logger"
	"task_tracker/internal/observability"
	"task_tracker/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services, logging and metrics.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewHandler constructs a new HTTP handler with dependencies. log and
// metrics may be nil.
func NewHandler(services *service.Service, log *logger.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{services: services, log: log, metrics: metrics}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestIDMiddleware, h.accessLogMiddleware)
	if h.metrics != nil {
		router.Use(h.metricsMiddleware)
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/", h.root)
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerTaskRoutes(router)
	h.registerActivityRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
	}
}

func (h *Handler) registerTaskRoutes(r *gin.Engine) {
	tasks := r.Group("/tasks", h.authMiddleware)
	{
		tasks.POST("", h.createTask)
		tasks.GET("", h.listTasks)
		// registered before /:id so the static segment wins
		tasks.GET("/ws", h.taskFeed)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

func (h *Handler) registerActivityRoutes(r *gin.Engine) {
	r.GET("/activity", h.authMiddleware, h.listActivity)
}

// @Summary  Service banner
// @Tags     system
// @Produce  json
// @Success  200  {object}  messageResponse
// @Router   / [get]
func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: "Task tracker backend is running"})
}

// @Summary  Liveness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

const (
	msgConflict       = "Username or email already registered"
	msgWrongCreds     = "Wrong credentials"
	msgBlankPassword  = "Password must not be blank"
	msgLongPassword   = "Password must be at most 72 bytes"
	msgInvalidToken   = "Invalid token"
	msgUserNotFound   = "User not found"
	msgTaskNotFound   = "Task not found"
	msgInvalidTaskID  = "Task id must be an integer"
	msgInternalServer = "Internal server error"
)

func abortDetail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, errorResponse{Detail: msg})
}

// writeServiceError maps service sentinels onto status codes. Anything
// unrecognised is logged under event and answered with 500.
func (h *Handler) writeServiceError(c *gin.Context, err error, event string) {
	switch {
	case errors.Is(err, service.ErrConflict):
		abortDetail(c, http.StatusBadRequest, msgConflict)
	case errors.Is(err, service.ErrEmptyPassword):
		abortDetail(c, http.StatusBadRequest, msgBlankPassword)
	case errors.Is(err, service.ErrPasswordTooLong):
		abortDetail(c, http.StatusBadRequest, msgLongPassword)
	case errors.Is(err, service.ErrUnauthorized):
		abortDetail(c, http.StatusUnauthorized, msgWrongCreds)
	case errors.Is(err, service.ErrTaskNotFound):
		abortDetail(c, http.StatusNotFound, msgTaskNotFound)
	case errors.Is(err, service.ErrInvalidTimeRange):
		abortDetail(c, http.StatusBadRequest, "'from' must be <= 'to'")
	default:
		if h.log != nil {
			h.log.Errorw(event, "err", err, "request_id", c.GetString(ctxRequestID))
		}
		abortDetail(c, http.StatusInternalServerError, msgInternalServer)
	}
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
// Body errors are 400; a malformed path id is 422 (see taskID).
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		abortDetail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
