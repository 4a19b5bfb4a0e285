package handler

import (
	"net/http"

	"slotkeeper/internal/eventtypes/service"
	httputil "slotkeeper/pkg/http"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type EventTypeHandler struct {
	service service.EventTypeService
	log     *logger.Logger
}

func NewEventTypeHandler(service service.EventTypeService, log *logger.Logger) *EventTypeHandler {
	return &EventTypeHandler{
		service: service,
		log:     log,
	}
}

func (h *EventTypeHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var eventType model.EventType
	if err := httputil.DecodeBody(r, &eventType); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &eventType); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, eventType); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// GetBySlug serves the public booking page lookup; only active event types
// resolve.
func (h *EventTypeHandler) GetBySlug(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventType, err := h.service.GetBySlug(r.Context(), ps.ByName("key"))
	if err != nil {
		h.writeError(w, "GetBySlug", err)
		return
	}

	if err := httputil.WriteSuccess(w, eventType); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBySlug", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventTypeHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	eventTypes, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if eventTypes == nil {
		eventTypes = []*model.EventType{}
	}
	if err := httputil.WriteSuccess(w, eventTypes); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventTypeHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.EventTypeUpdate
	if err := httputil.DecodeBody(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	eventType, err := h.service.Update(r.Context(), ps.ByName("key"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, eventType); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventTypeHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("key")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, "Event type deleted successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *EventTypeHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// RegisterRoutes shares one wildcard under /api/event-types: GET reads it as
// a slug, PUT and DELETE as an id.
func (h *EventTypeHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/event-types", h.List)
	router.POST("/api/event-types", h.Create)
	router.GET("/api/event-types/:key", h.GetBySlug)
	router.PUT("/api/event-types/:key", h.Update)
	router.DELETE("/api/event-types/:key", h.Delete)
}
