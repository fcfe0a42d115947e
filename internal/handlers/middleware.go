package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"task_tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUsername  = "username"
	ctxRequestID = "request_id"

	headerRequestID = "X-Request-Id"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authMiddleware resolves the bearer token to a username and stores it in
// the gin context. Every failure is a 401.
func (h *Handler) authMiddleware(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok && c.FullPath() == "/tasks/ws" {
		// browsers cannot set headers on a websocket handshake
		token = c.Query("token")
		ok = token != ""
	}
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		abortDetail(c, http.StatusUnauthorized, msgInvalidToken)
		return
	}

	username, err := h.services.ParseToken(c.Request.Context(), token)
	if err != nil {
		msg := msgInvalidToken
		if errors.Is(err, service.ErrUserNotFound) {
			msg = msgUserNotFound
		} else if !errors.Is(err, service.ErrInvalidToken) && h.log != nil {
			h.log.Errorw("auth_parse_token_failed", "err", err)
		}
		c.Header("WWW-Authenticate", "Bearer")
		abortDetail(c, http.StatusUnauthorized, msg)
		return
	}

	c.Set(ctxUsername, username)
	c.Next()
}

func currentUser(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

// requestIDMiddleware echoes a caller supplied X-Request-Id or generates one.
func (h *Handler) requestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(headerRequestID)
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	c.Set(ctxRequestID, id)
	c.Header(headerRequestID, id)
	c.Next()
}

func (h *Handler) accessLogMiddleware(c *gin.Context) {
	start := time.Now()
	c.Next()
	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"route", routeLabel(c),
		"status", c.Writer.Status(),
		"latency_ms", time.Since(start).Milliseconds(),
		"request_id", c.GetString(ctxRequestID),
		"user", currentUser(c),
	)
}

func (h *Handler) metricsMiddleware(c *gin.Context) {
	m := h.metrics
	m.HTTPRequestsInFlight.Inc()
	start := time.Now()

	c.Next()

	m.HTTPRequestsInFlight.Dec()
	route := routeLabel(c)
	m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
}

// routeLabel is the matched route template, which keeps label cardinality bounded.
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
