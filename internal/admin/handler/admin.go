package handler

import (
	"net/http"

	"hirfa/internal/admin/service"
	"hirfa/pkg/config"
	httputil "hirfa/pkg/http"
	"hirfa/pkg/logger"
	"hirfa/pkg/middleware"
	"hirfa/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AdminHandler struct {
	service service.AdminService
	auth    *middleware.Authenticator
	cfg     *config.Config
	log     *logger.Logger
}

func NewAdminHandler(service service.AdminService, auth *middleware.Authenticator, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		service: service,
		auth:    auth,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r, h.cfg)
	if err != nil {
		h.writeError(w, "ListUsers", err)
		return
	}

	users, total, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "ListUsers", err)
		return
	}

	if err := httputil.WritePaginated(w, users, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListUsers", "operation", "WritePaginated", "error", err)
	}
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateUser", err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CreateUser", err)
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateUser", "operation", "WriteCreated", "error", err)
	}
}

func (h *AdminHandler) PendingCraftsmen(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r, h.cfg)
	if err != nil {
		h.writeError(w, "PendingCraftsmen", err)
		return
	}

	craftsmen, total, err := h.service.PendingCraftsmen(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "PendingCraftsmen", err)
		return
	}

	if err := httputil.WritePaginated(w, craftsmen, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "PendingCraftsmen", "operation", "WritePaginated", "error", err)
	}
}

func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.VerifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Verify", err)
		return
	}

	craftsman, err := h.service.Verify(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Verify", err)
		return
	}

	if err := httputil.WriteSuccess(w, craftsman); err != nil {
		h.log.Error("failed to write success response", "handler", "Verify", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/users", h.auth.Require(h.ListUsers, model.RoleAdmin))
	router.POST("/api/v1/admin/users", h.auth.Require(h.CreateUser, model.RoleAdmin))
	router.GET("/api/v1/admin/craftsmen/pending", h.auth.Require(h.PendingCraftsmen, model.RoleAdmin))
	router.PUT("/api/v1/admin/craftsmen/id/:id/verify", h.auth.Require(h.Verify, model.RoleAdmin))
}
