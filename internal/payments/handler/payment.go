package handler

import (
	"io"
	"net/http"

	"hirfa/internal/payments/service"
	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	httputil "hirfa/pkg/http"
	"hirfa/pkg/logger"
	"hirfa/pkg/middleware"
	"hirfa/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	StripeSignatureHeader = "Stripe-Signature"
	maxWebhookBytes       = 64 * 1024
)

type PaymentHandler struct {
	service service.PaymentService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, auth *middleware.Authenticator, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		auth:    auth,
		log:     cfg.Log,
	}
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	var req model.CreateIntentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateIntent", err)
		return
	}

	result, err := h.service.CreateIntent(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, "CreateIntent", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CreateIntent", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	var req model.ConfirmPaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	booking, err := h.service.Confirm(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "operation", "WriteSuccess", "error", err)
	}
}

// Webhook needs the body byte for byte to verify the signature.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		h.writeError(w, "Webhook", apperrors.BadRequest("Failed to read webhook body"))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get(StripeSignatureHeader)); err != nil {
		h.writeError(w, "Webhook", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, map[string]bool{"received": true}); err != nil {
		h.log.Error("failed to write webhook response", "handler", "Webhook", "operation", "WriteJSON", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/create-intent", h.auth.Require(h.CreateIntent, model.RoleCustomer))
	router.POST("/api/v1/payments/confirm", h.auth.Require(h.Confirm))
	router.POST("/api/v1/payments/webhook", h.Webhook)
}
