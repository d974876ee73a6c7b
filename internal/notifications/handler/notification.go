package handler

import (
	"net/http"

	"hirfa/internal/notifications/service"
	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	httputil "hirfa/pkg/http"
	"hirfa/pkg/logger"
	"hirfa/pkg/middleware"
	"hirfa/pkg/model"
	"hirfa/pkg/realtime"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

type NotificationHandler struct {
	service  service.NotificationService
	hub      *realtime.Hub
	auth     *middleware.Authenticator
	upgrader websocket.Upgrader
	cfg      *config.Config
	log      *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, hub *realtime.Hub, auth *middleware.Authenticator, cfg *config.Config) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		auth:    auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Sockets are authenticated by token, not origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		cfg: cfg,
		log: cfg.Log,
	}
}

func (h *NotificationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	limit, err := httputil.QueryInt(r, "limit", service.DefaultListLimit)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	list, err := h.service.List(r.Context(), principal.UserID, httputil.QueryBool(r, "unread_only"), limit)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, list); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var n model.Notification
	if err := httputil.DecodeJSON(r, &n); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	created, err := h.service.Create(r.Context(), &n)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	if err := h.service.MarkRead(r.Context(), ps.ByName("id"), principal.UserID); err != nil {
		h.writeError(w, "MarkRead", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"read": true}); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkRead", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	updated, err := h.service.MarkAllRead(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, "MarkAllRead", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"updated": updated}); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkAllRead", "operation", "WriteSuccess", "error", err)
	}
}

// Stream upgrades to a websocket that receives the caller's notifications
// as they are emitted.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Warn("websocket upgrade failed", "user_id", principal.UserID, "error", err)
		return
	}

	realtime.NewClient(h.hub, conn, principal.UserID, h.log).Serve()
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/notifications", h.auth.Require(h.GetAll))
	router.GET("/api/v1/notifications/ws", h.auth.Require(h.Stream))
	router.PUT("/api/v1/notifications/id/:id/read", h.auth.Require(h.MarkRead))
	router.PUT("/api/v1/notifications/mark-all-read", h.auth.Require(h.MarkAllRead))

	if h.cfg.InternalAPISecret != "" {
		router.POST("/api/v1/notifications", middleware.InternalSignature(h.cfg.InternalAPISecret, h.log, h.Create))
	} else {
		router.POST("/api/v1/notifications", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			h.writeError(w, "Create", apperrors.NotFound("Route"))
		})
	}
}
