// Package httpapi is the driving adapter: the REST and websocket surface the
// chat UI uses to reach the call engine.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/voxline/voxline/internal/adapters/roomstore"
	"github.com/voxline/voxline/internal/app"
	"github.com/voxline/voxline/internal/app/orch"
	"github.com/voxline/voxline/internal/config"
	"github.com/voxline/voxline/internal/core"
	"github.com/voxline/voxline/internal/domain"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, h *orch.CallHandler, rooms *roomstore.Store, feed *EventFeed) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("VoxlineSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.httpapi").Msg("router setup")

	api := r.Group("/api")

	api.POST("/call/place", func(c *gin.Context) { placeCall(c, h) })
	api.POST("/call/dial", func(c *gin.Context) { dialNumber(c, h) })
	api.POST("/call/hold", func(c *gin.Context) { callCommand(c, h.HoldCall) })
	api.POST("/call/resume", func(c *gin.Context) { callCommand(c, h.ResumeCall) })
	api.DELETE("/call", func(c *gin.Context) { callCommand(c, h.HangupCall) })
	api.GET("/rooms/:id/call", func(c *gin.Context) { callForRoom(c, h) })
	api.GET("/rooms/:id/members", func(c *gin.Context) { roomMembers(c, rooms) })
	api.GET("/ws/events", feed.HandleWS)

	return r
}

type callView struct {
	CallID domain.CallID    `json:"call_id"`
	RoomID domain.RoomID    `json:"room_id"`
	State  domain.CallState `json:"state"`
}

func placeCall(c *gin.Context, h *orch.CallHandler) {
	var p struct {
		RoomID string `json:"room_id" binding:"required"`
		Kind   string `json:"kind"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}
	kind := domain.CallType(p.Kind)
	if kind == "" {
		kind = domain.CallVoice
	}
	sess, err := h.PlaceCall(c.Request.Context(), domain.RoomID(p.RoomID), kind)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, callView{CallID: sess.ID(), RoomID: domain.RoomID(p.RoomID), State: sess.State()})
}

func dialNumber(c *gin.Context, h *orch.CallHandler) {
	var p struct {
		Number string `json:"number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}
	sess, err := h.DialNumber(c.Request.Context(), p.Number)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	roomID, _ := h.Registry.RoomForCall(sess.ID())
	c.JSON(http.StatusCreated, callView{CallID: sess.ID(), RoomID: roomID, State: sess.State()})
}

func callCommand(c *gin.Context, cmd func() error) {
	if err := cmd(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func callForRoom(c *gin.Context, h *orch.CallHandler) {
	roomID := domain.RoomID(c.Param("id"))
	sess, ok := h.CallForRoom(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no call in room"})
		return
	}
	c.JSON(http.StatusOK, callView{CallID: sess.ID(), RoomID: roomID, State: sess.State()})
}

func roomMembers(c *gin.Context, rooms *roomstore.Store) {
	roomID := domain.RoomID(c.Param("id"))
	if _, ok := rooms.Room(roomID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": rooms.MembersSnapshot(roomID)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrCallInProgress):
		return http.StatusConflict
	case errors.Is(err, core.ErrNoMatch), errors.Is(err, orch.ErrNoDirectRoom):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDirectoryUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, orch.ErrNoActiveCall):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
