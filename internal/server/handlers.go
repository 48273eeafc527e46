package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/tradingfloor/internal/activity"
	"github.com/aristath/tradingfloor/internal/metrics"
)

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	state := s.engine.ClockState()
	s.writeJSON(w, map[string]interface{}{
		"now":       state.Now.Format(time.RFC3339),
		"date":      state.Now.Format("2006-01-02"),
		"time":      state.Now.Format("15:04"),
		"period":    state.Period,
		"day_type":  state.DayType,
		"speed":     state.Speed,
		"running":   state.Running,
		"paused":    s.engine.Paused(),
		"completed": s.engine.Completed(),
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.ledger.Portfolio())
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.ledger.OrderBook())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"pending":   s.queue.Pending(),
		"active":    s.queue.Active(),
		"completed": s.queue.Completed(),
	})
}

func (s *Server) handleMarketEvents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.MarketEvents())
}

func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.roster.List())
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries := s.activity.List(activity.Filter{
		CharacterType: q.Get("character_type"),
		RoomID:        q.Get("room"),
		ActionType:    activity.ActionType(q.Get("action")),
		Search:        q.Get("search"),
	})
	s.writeJSON(w, entries)
}

type addActivityRequest struct {
	CharacterID string `json:"character_id"`
	RoomID      string `json:"room_id"`
	Description string `json:"description"`
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	var req addActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" {
		s.writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	characterType := ""
	if c, ok := s.roster.Get(req.CharacterID); ok {
		characterType = c.Role
	}
	entry := s.activity.Append(activity.Entry{
		Timestamp:     s.engine.ClockState().Now,
		CharacterID:   req.CharacterID,
		CharacterType: characterType,
		RoomID:        req.RoomID,
		Description:   req.Description,
		Details:       activity.SystemDetails{Source: "api"},
	})
	s.writeJSON(w, entry)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	history := s.ledger.Performance()
	s.writeJSON(w, map[string]interface{}{
		"history": history,
		"summary": metrics.Summarize(history),
	})
}

func (s *Server) handlePerformanceChart(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, metrics.Chart(s.ledger.Performance()))
}

func (s *Server) handleSimStart(w http.ResponseWriter, r *http.Request) {
	s.engine.Start()
	s.writeJSON(w, map[string]interface{}{"paused": s.engine.Paused()})
}

func (s *Server) handleSimPause(w http.ResponseWriter, r *http.Request) {
	s.engine.Pause()
	s.writeJSON(w, map[string]interface{}{"paused": s.engine.Paused()})
}

type simSpeedRequest struct {
	Speed float64 `json:"speed"`
}

func (s *Server) handleSimSpeed(w http.ResponseWriter, r *http.Request) {
	var req simSpeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.SetSpeed(req.Speed); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, map[string]interface{}{"speed": req.Speed})
}

func (s *Server) handleFastForwardDay(w http.ResponseWriter, r *http.Request) {
	s.engine.FastForwardDay()
	s.writeJSON(w, s.engine.ClockState())
}

func (s *Server) handleFastForwardWeekday(w http.ResponseWriter, r *http.Request) {
	s.engine.FastForwardWeekday()
	s.writeJSON(w, s.engine.ClockState())
}
