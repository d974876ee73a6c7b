package handler

import (
	"net/http"

	"hirfa/internal/bookings/service"
	"hirfa/pkg/config"
	httputil "hirfa/pkg/http"
	"hirfa/pkg/logger"
	"hirfa/pkg/middleware"
	"hirfa/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	auth    *middleware.Authenticator
	cfg     *config.Config
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, auth *middleware.Authenticator, cfg *config.Config) *BookingHandler {
	return &BookingHandler{
		service: service,
		auth:    auth,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	booking, err := h.service.GetByID(r.Context(), principal, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r, h.cfg)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	bookings, total, err := h.service.List(r.Context(), principal, r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	var action model.BookingAction
	if err := httputil.DecodeJSON(r, &action); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	booking, err := h.service.ChangeStatus(r.Context(), principal, ps.ByName("id"), &action)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.auth.Require(h.Create, model.RoleCustomer))
	router.GET("/api/v1/bookings", h.auth.Require(h.GetAll))
	router.GET("/api/v1/bookings/id/:id", h.auth.Require(h.GetByID))
	router.PATCH("/api/v1/bookings/id/:id/status", h.auth.Require(h.UpdateStatus))
}
