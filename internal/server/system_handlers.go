package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// handleSystemStatus reports process uptime plus host CPU and memory
// usage. GET /api/system/status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := s.systemStats()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.writeJSON(w, map[string]interface{}{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"goroutines":     runtime.NumGoroutine(),
		"heap_mb":        float64(m.HeapAlloc) / 1024 / 1024,
		"clock":          s.engine.ClockState(),
	})
}

// systemStats samples host CPU and RAM usage. The CPU sample uses a
// 100ms window so the handler responds quickly.
func (s *Server) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}
