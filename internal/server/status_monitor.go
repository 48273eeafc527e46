package server

import (
	"time"

	"github.com/aristath/tradingfloor/internal/events"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatusMonitor periodically broadcasts a system status event so
// connected clients can show host health without polling.
type StatusMonitor struct {
	eventManager *events.Manager
	cron         *cron.Cron
	log          zerolog.Logger
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(eventManager *events.Manager, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		eventManager: eventManager,
		cron:         cron.New(),
		log:          log.With().Str("component", "status_monitor").Logger(),
	}
}

// Start begins the periodic broadcast, once per minute
func (m *StatusMonitor) Start() {
	if _, err := m.cron.AddFunc("@every 1m", m.broadcast); err != nil {
		m.log.Error().Err(err).Msg("Failed to schedule status broadcast")
		return
	}
	m.cron.Start()
	m.log.Info().Msg("Status monitor started")
}

// Stop halts the broadcast schedule
func (m *StatusMonitor) Stop() {
	m.cron.Stop()
}

func (m *StatusMonitor) broadcast() {
	cpuPct := 0.0
	if sampled, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(sampled) > 0 {
		cpuPct = sampled[0]
	}
	memPct := 0.0
	if stat, err := mem.VirtualMemory(); err == nil {
		memPct = stat.UsedPercent
	}

	m.eventManager.EmitTyped(events.SystemStatusChanged, "status_monitor", &events.SystemStatusData{
		CPUPercent:    cpuPct,
		MemoryPercent: memPct,
		Timestamp:     time.Now().Format(time.RFC3339),
	})
}
