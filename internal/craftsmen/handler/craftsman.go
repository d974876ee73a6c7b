package handler

import (
	"net/http"
	"strconv"

	"hirfa/internal/craftsmen/service"
	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	httputil "hirfa/pkg/http"
	"hirfa/pkg/logger"
	"hirfa/pkg/middleware"
	"hirfa/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CraftsmanHandler struct {
	service service.CraftsmanService
	auth    *middleware.Authenticator
	cfg     *config.Config
	log     *logger.Logger
}

func NewCraftsmanHandler(service service.CraftsmanService, auth *middleware.Authenticator, cfg *config.Config) *CraftsmanHandler {
	return &CraftsmanHandler{
		service: service,
		auth:    auth,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *CraftsmanHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	filter.Query = r.URL.Query().Get("search")

	if s := r.URL.Query().Get("verified"); s != "" {
		verified, err := strconv.ParseBool(s)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput("invalid verified parameter: "+s))
			return
		}
		filter.Verified = &verified
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, result.Craftsmen, result.TotalCount, result.Limit, result.Offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

type searchResponse struct {
	Craftsmen  []model.CraftsmanProfile `json:"craftsmen"`
	TotalCount int64                    `json:"total_count"`
	Limit      int                      `json:"limit"`
	Offset     int64                    `json:"offset"`
	Filters    searchFilters            `json:"filters"`
}

type searchFilters struct {
	Cities []string `json:"cities"`
}

func (h *CraftsmanHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	query := r.URL.Query()
	filter.Query = query.Get("q")
	filter.SortBy = query.Get("sort_by")

	if filter.MinRate, err = httputil.QueryFloat(r, "min_rate", 0); err != nil {
		h.writeError(w, "Search", err)
		return
	}
	if filter.MinExperience, err = httputil.QueryInt(r, "min_experience", 0); err != nil {
		h.writeError(w, "Search", err)
		return
	}

	result, err := h.service.Search(r.Context(), filter)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	cities := result.Cities
	if cities == nil {
		cities = []string{}
	}
	if err := httputil.WriteSuccess(w, searchResponse{
		Craftsmen:  result.Craftsmen,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
		Filters:    searchFilters{Cities: cities},
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CraftsmanHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	detail, err := h.service.GetDetail(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, detail); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CraftsmanHandler) UpdateMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := middleware.PrincipalFrom(r.Context())

	var update model.CraftsmanUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateMine", err)
		return
	}

	craftsman, err := h.service.UpdateMine(r.Context(), principal.UserID, &update)
	if err != nil {
		h.writeError(w, "UpdateMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, craftsman); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateMine", "operation", "WriteSuccess", "error", err)
	}
}

// parseFilter reads the criteria shared by listing and search.
func (h *CraftsmanHandler) parseFilter(r *http.Request) (model.CraftsmanFilter, error) {
	limit, offset, err := httputil.ExtractLimitOffset(r, h.cfg)
	if err != nil {
		return model.CraftsmanFilter{}, err
	}

	query := r.URL.Query()
	filter := model.CraftsmanFilter{
		Specialty: query.Get("specialty"),
		City:      query.Get("city"),
		Limit:     limit,
		Offset:    offset,
	}

	if filter.MinRating, err = httputil.QueryFloat(r, "min_rating", 0); err != nil {
		return model.CraftsmanFilter{}, err
	}
	if filter.MaxRate, err = httputil.QueryFloat(r, "max_rate", 0); err != nil {
		return model.CraftsmanFilter{}, err
	}
	return filter, nil
}

func (h *CraftsmanHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CraftsmanHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/craftsmen", h.List)
	router.GET("/api/v1/craftsmen/search", h.Search)
	router.GET("/api/v1/craftsmen/id/:id", h.GetByID)
	router.PATCH("/api/v1/craftsmen/me", h.auth.Require(h.UpdateMine, model.RoleCraftsman))
}
