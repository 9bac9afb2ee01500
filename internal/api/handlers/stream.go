package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	"travel-map-service/internal/api/dto"
	"travel-map-service/internal/api/stream"

	"github.com/rs/zerolog"
)

const (
	streamBuffer     = 16
	defaultKeepalive = 15 * time.Second
	closedEventName  = "closed"
	viewEventName    = "view"
)

// Stream pushes every published view snapshot as a Server-Sent Event until the
// client goes away or the session closes.
func (h *SessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	logger := zerolog.Ctx(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := stream.NewClient(streamBuffer)
	detach := s.Attach()
	defer detach()
	unsubscribe := s.Controller.Subscribe(client)
	defer unsubscribe()

	keepalive := h.Keepalive
	if keepalive <= 0 {
		keepalive = defaultKeepalive
	}
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-s.Done():
			_ = stream.WriteEvent(w, closedEventName, 0, []byte(`{}`))
			flusher.Flush()
			return

		case vm := <-client.Views():
			data, err := json.Marshal(dto.FromViewModel(vm))
			if err != nil {
				logger.Error().Err(err).Msg("encode_view_failed")
				return
			}
			if err := stream.WriteEvent(w, viewEventName, vm.Version, data); err != nil {
				logger.Debug().Err(err).Msg("stream_write_failed")
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if err := stream.WriteComment(w, "keepalive"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
