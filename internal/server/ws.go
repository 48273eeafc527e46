package server

import (
	"net/http"
	"time"

	"github.com/aristath/tradingfloor/internal/events"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// wsFrame is the envelope written to websocket clients
type wsFrame struct {
	Type      string      `json:"type"`
	Module    string      `json:"module,omitempty"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// handleWebSocket streams the same event feed as SSE over a websocket,
// for clients that prefer a bidirectional transport.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	s.log.Info().Msg("Websocket client connected")

	eventChan := make(chan *events.Event, 100)
	unsubscribe := s.manager.Bus().SubscribeAll(func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
		}
	})
	defer unsubscribe()

	if err := wsjson.Write(ctx, conn, wsFrame{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Websocket client disconnected")
			return

		case event := <-eventChan:
			frame := wsFrame{
				Type:      string(event.Type),
				Module:    event.Module,
				Timestamp: event.Timestamp.Format(time.RFC3339),
				Data:      event.Data,
			}
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				s.log.Debug().Err(err).Msg("Websocket write failed, closing")
				return
			}

		case <-heartbeat.C:
			frame := wsFrame{Type: "heartbeat", Timestamp: time.Now().Format(time.RFC3339)}
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				return
			}
		}
	}
}
