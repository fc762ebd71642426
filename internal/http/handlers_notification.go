package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"fintrack/internal/log"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	items, err := s.notifications.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := s.notifications.MarkAsRead(r.Context(), userID, r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

// handleNotificationStream serves the live event feed over server-sent
// events. The connection stays registered with the hub until the client goes
// away.
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, leave := s.hub.Join(userID)
	defer leave()

	slog.InfoContext(r.Context(), "Live stream opened", log.FieldUserID, userID)

	for {
		select {
		case <-r.Context().Done():
			slog.InfoContext(r.Context(), "Live stream closed", log.FieldUserID, userID)
			return
		case ev := <-events:
			payload, err := json.Marshal(ev.Payload)
			if err != nil {
				slog.WarnContext(r.Context(), "Dropping unserializable event",
					log.FieldUserID, userID,
					log.FieldEvent, ev.Event,
				)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, payload)
			flusher.Flush()
		}
	}
}
