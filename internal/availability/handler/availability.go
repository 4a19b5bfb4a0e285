package handler

import (
	"net/http"

	"slotkeeper/internal/availability/service"
	apperrors "slotkeeper/pkg/errors"
	httputil "slotkeeper/pkg/http"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	availability, err := h.service.Get(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Replace(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.replace(w, r, "Replace")
}

// ReplaceByID keeps the id-addressed form of the update route. Only the
// single stored availability can be addressed.
func (h *AvailabilityHandler) ReplaceByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if id := ps.ByName("id"); id != model.AvailabilityID {
		if writeErr := httputil.WriteError(w, apperrors.NotFoundWithID("Availability", id)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ReplaceByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	h.replace(w, r, "ReplaceByID")
}

func (h *AvailabilityHandler) replace(w http.ResponseWriter, r *http.Request, name string) {
	var input model.AvailabilityInput
	if err := httputil.DecodeBody(r, &input); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	availability, err := h.service.Replace(r.Context(), &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/availability", h.Get)
	router.PUT("/api/availability", h.Replace)
	router.POST("/api/availability", h.Replace)
	router.PUT("/api/availability/:id", h.ReplaceByID)
}
