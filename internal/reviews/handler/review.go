package handler

import (
	"net/http"

	"hirfa/internal/reviews/service"
	"hirfa/pkg/config"
	httputil "hirfa/pkg/http"
	"hirfa/pkg/logger"
	"hirfa/pkg/middleware"
	"hirfa/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReviewHandler struct {
	service service.ReviewService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewReviewHandler(service service.ReviewService, auth *middleware.Authenticator, cfg *config.Config) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		auth:    auth,
		log:     cfg.Log,
	}
}

func (h *ReviewHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := httputil.QueryInt(r, "limit", service.DefaultListLimit)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	query := r.URL.Query()
	reviews, err := h.service.List(r.Context(), model.ReviewFilter{
		CraftsmanID: query.Get("craftsman_id"),
		CustomerID:  query.Get("customer_id"),
		Limit:       limit,
	})
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, reviews); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	var req model.ReviewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	review, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, review); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReviewHandler) Respond(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	var req model.ReviewResponseRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Respond", err)
		return
	}

	review, err := h.service.Respond(r.Context(), principal, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Respond", err)
		return
	}

	if err := httputil.WriteSuccess(w, review); err != nil {
		h.log.Error("failed to write success response", "handler", "Respond", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	if err := h.service.Delete(r.Context(), principal, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/reviews", h.GetAll)
	router.POST("/api/v1/reviews", h.auth.Require(h.Create, model.RoleCustomer))
	router.PUT("/api/v1/reviews/id/:id", h.auth.Require(h.Respond, model.RoleCraftsman))
	router.DELETE("/api/v1/reviews/id/:id", h.auth.Require(h.Delete))
}
