// Package api exposes HTTP handlers for the insight engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"example.com/insights/internal/auth"
	"example.com/insights/internal/domain"
	"example.com/insights/internal/notify"
	"example.com/insights/internal/persistence"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Engine is the subset of engine.NotificationEngine used by the handlers.
type Engine interface {
	ProcessClientData(ctx context.Context, clientID string) ([]domain.Notification, error)
	CheckTriggerPoints(ctx context.Context, clientID string, eventType domain.EventType, data domain.EventData) (*domain.Notification, error)
}

// Notifications lists and sends notifications.
type Notifications interface {
	List(ctx context.Context, clientID string, cursor *domain.Cursor, limit int) ([]domain.Notification, *domain.Cursor, error)
	SendNotification(ctx context.Context, clientID, notificationType, message string) (*domain.Notification, error)
}

// Handler coordinates HTTP requests with the engine and notification service.
type Handler struct {
	engine        Engine
	notifications Notifications
	logger        zerolog.Logger
}

// NewHandler builds a Handler.
func NewHandler(engine Engine, notifications Notifications, logger zerolog.Logger) *Handler {
	return &Handler{engine: engine, notifications: notifications, logger: logger}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	clients := r.PathPrefix("/v1/clients/{clientID}").Subrouter()
	clients.HandleFunc("/events", h.triggerEvent).Methods(http.MethodPost)
	clients.HandleFunc("/analyze", h.analyze).Methods(http.MethodPost)
	clients.HandleFunc("/notifications", h.listNotifications).Methods(http.MethodGet)
	clients.HandleFunc("/messages", h.sendMessage).Methods(http.MethodPost)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) triggerEvent(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeTrigger) {
		return
	}
	clientID := mux.Vars(r)["clientID"]

	var req TriggerEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(string(req.EventType)) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "event_type is required")
		return
	}

	n, err := h.engine.CheckTriggerPoints(r.Context(), clientID, req.EventType, req.Data)
	switch {
	case errors.Is(err, domain.ErrUnknownEvent):
		writeError(w, http.StatusBadRequest, "unknown_event", err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", "notification service did not respond in time")
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, "notification_failed", err.Error())
		return
	case n == nil:
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, toNotificationView(*n))
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeAnalyze) {
		return
	}
	clientID := mux.Vars(r)["clientID"]

	created, err := h.engine.ProcessClientData(r.Context(), clientID)
	if err != nil {
		h.logger.Warn().Err(err).Str("client_id", clientID).Msg("analysis interrupted")
		writeError(w, http.StatusServiceUnavailable, "interrupted", err.Error())
		return
	}

	resp := AnalyzeResponse{Created: make([]NotificationView, 0, len(created))}
	for _, n := range created {
		resp.Created = append(resp.Created, toNotificationView(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.CanReadClient(clientID) {
		writeError(w, http.StatusForbidden, "forbidden", "scope insights:read required")
		return
	}

	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = min(parsed, maxPageSize)
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	items, next, err := h.notifications.List(r.Context(), clientID, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := ListNotificationsResponse{
		Items:      make([]NotificationView, 0, len(items)),
		NextCursor: persistence.EncodeCursor(next),
	}
	for _, n := range items {
		resp.Items = append(resp.Items, toNotificationView(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeTrigger) {
		return
	}
	clientID := mux.Vars(r)["clientID"]

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	n, err := h.notifications.SendNotification(r.Context(), clientID, req.Type, req.Message)
	if err != nil {
		if errors.Is(err, notify.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toNotificationView(*n))
}

func requireScope(w http.ResponseWriter, r *http.Request, scope string) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if !claims.HasScope(scope) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return false
	}
	return true
}

// TriggerEventRequest is the payload for POST /v1/clients/{clientID}/events.
type TriggerEventRequest struct {
	EventType domain.EventType `json:"event_type"`
	Data      domain.EventData `json:"data"`
}

// SendMessageRequest is the payload for POST /v1/clients/{clientID}/messages.
type SendMessageRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NotificationView is the wire form of a notification.
type NotificationView struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	RuleID     string    `json:"rule_id,omitempty"`
	Type       string    `json:"type"`
	Priority   string    `json:"priority"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	ReadStatus string    `json:"read_status"`
}

// AnalyzeResponse lists the notifications created by an on-demand analysis.
type AnalyzeResponse struct {
	Created []NotificationView `json:"created"`
}

// ListNotificationsResponse packages list results.
type ListNotificationsResponse struct {
	Items      []NotificationView `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

func toNotificationView(n domain.Notification) NotificationView {
	return NotificationView{
		ID:         n.ID,
		ClientID:   n.ClientID,
		RuleID:     n.RuleID,
		Type:       n.Type,
		Priority:   n.Priority,
		Title:      n.Title,
		Message:    n.Message,
		CreatedAt:  n.CreatedAt,
		ReadStatus: string(n.ReadStatus),
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
