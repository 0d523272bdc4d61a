package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bazarlabs/livefeed/auth/jwt"
	"github.com/bazarlabs/livefeed/auth/password"
	"github.com/bazarlabs/livefeed/errors"
	"github.com/bazarlabs/livefeed/logger"
	"github.com/bazarlabs/livefeed/server/middleware"
	"github.com/bazarlabs/livefeed/sse"
	"github.com/bazarlabs/livefeed/validation"
)

// UserAccount is one provisioned account the login endpoint accepts.
type UserAccount struct {
	UserID       string `yaml:"user_id" mapstructure:"user_id"`
	PasswordHash string `yaml:"password_hash" mapstructure:"password_hash"`
	Role         string `yaml:"role" mapstructure:"role"`
}

// API is the feed service's route set: login, the event stream, and the
// admin broadcast endpoint.
type API struct {
	hub    *sse.Hub
	tokens *jwt.Service
	hasher password.Hasher
	users  map[string]UserAccount
	log    *logger.Logger
}

// NewAPI wires the feed API. users is keyed by username.
func NewAPI(hub *sse.Hub, tokens *jwt.Service, hasher password.Hasher, users map[string]UserAccount, log *logger.Logger) *API {
	return &API{
		hub:    hub,
		tokens: tokens,
		hasher: hasher,
		users:  users,
		log:    log.WithComponent("api"),
	}
}

// Register mounts the API routes on the engine.
func (a *API) Register(engine *gin.Engine) {
	auth := middleware.Auth(a.tokens)

	api := engine.Group("/api")
	api.POST("/auth/login", a.login)
	api.GET("/events", auth, a.events)

	admin := api.Group("/admin", auth, middleware.RequireRole("admin"))
	admin.POST("/events", a.broadcast)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// login verifies credentials and mints a bearer token for the feed.
func (a *API) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Validation("request body must be JSON"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondError(c, err)
		return
	}

	account, ok := a.users[req.Username]
	if !ok || a.hasher.Verify(req.Password, account.PasswordHash) != nil {
		// Same response for unknown user and bad password.
		respondError(c, errors.Unauthorized("invalid credentials"))
		return
	}

	token, err := a.tokens.Generate(account.UserID, account.Role)
	if err != nil {
		a.log.Error("token generation failed", logger.ErrorFields("login", err))
		respondError(c, errors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(a.tokens.AccessTokenTTL().Seconds()),
	})
}

// events streams the authenticated user's feed. Blocks until the client
// disconnects.
func (a *API) events(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	sse.ServeFeed(a.hub, c.Writer, c.Request, "user:"+userID, sse.WithUserID(userID))
}

type broadcastRequest struct {
	Event   string          `json:"event" validate:"required"`
	Pattern string          `json:"pattern"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// broadcast publishes an event to matching subscribers. Admin only.
func (a *API) broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Validation("request body must be JSON"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondError(c, err)
		return
	}
	if req.Pattern == "" {
		req.Pattern = "*"
	}

	if err := a.hub.Broadcast(req.Pattern, sse.Event{Type: req.Event, Payload: req.Payload}); err != nil {
		respondError(c, errors.Internal(err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"event":   req.Event,
		"pattern": req.Pattern,
	})
}

// respondError writes the canonical error body at the error's HTTP status.
func respondError(c *gin.Context, err error) {
	c.JSON(errors.HTTPStatus(err), errors.ToResponse(err))
}
