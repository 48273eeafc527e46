// Package events provides event management functionality.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// Simulation lifecycle
	SimulationStarted   EventType = "SIMULATION_STARTED"
	SimulationPaused    EventType = "SIMULATION_PAUSED"
	SimulationResumed   EventType = "SIMULATION_RESUMED"
	SimulationCompleted EventType = "SIMULATION_COMPLETED"
	SpeedChanged        EventType = "SPEED_CHANGED"
	DayCompleted        EventType = "DAY_COMPLETED"

	// Character events
	CharacterEventQueued    EventType = "CHARACTER_EVENT_QUEUED"
	CharacterEventStarted   EventType = "CHARACTER_EVENT_STARTED"
	CharacterEventCompleted EventType = "CHARACTER_EVENT_COMPLETED"

	// Market events
	MarketEventCreated EventType = "MARKET_EVENT_CREATED"
	MarketEventExpired EventType = "MARKET_EVENT_EXPIRED"

	// Ledger events
	OrderCreated        EventType = "ORDER_CREATED"
	OrderExecuted       EventType = "ORDER_EXECUTED"
	OrderCancelled      EventType = "ORDER_CANCELLED"
	OrderRejected       EventType = "ORDER_REJECTED"
	PricesUpdated       EventType = "PRICES_UPDATED"
	PerformanceRecorded EventType = "PERFORMANCE_RECORDED"

	// System
	ActivityLogged      EventType = "ACTIVITY_LOGGED"
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// Event represents a system event with typed data
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data,omitempty"`
}
