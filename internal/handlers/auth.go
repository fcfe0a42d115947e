package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pointer fields with "required" must be present but may be empty strings;
// the service decides what an empty value means.
type registerRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password *string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username *string `json:"username" binding:"required"`
	Password *string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func bearer(token string) tokenResponse {
	return tokenResponse{AccessToken: token, TokenType: "bearer"}
}

// @Summary      Register a user
// @Description  Creates the account and returns a bearer token valid for 30 minutes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "New account"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse  "username or email taken, or invalid body"
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input registerRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.Register(c.Request.Context(), input.Username, input.Email, *input.Password)
	h.metrics.ObserveAuth("register", err)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_register_failed", "username", input.Username, "err", err)
		}
		h.writeServiceError(c, err, "auth_register_error")
		return
	}

	if h.log != nil {
		h.log.Infow("auth_registered", "username", input.Username)
	}
	c.JSON(http.StatusOK, bearer(token))
}

// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      loginRequest  true  "Credentials"
// @Success  200   {object}  tokenResponse
// @Failure  400   {object}  errorResponse
// @Failure  401   {object}  errorResponse  "Wrong credentials"
// @Router   /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.Login(c.Request.Context(), *input.Username, *input.Password)
	h.metrics.ObserveAuth("login", err)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_login_failed", "username", *input.Username)
		}
		h.writeServiceError(c, err, "auth_login_error")
		return
	}

	c.JSON(http.StatusOK, bearer(token))
}
