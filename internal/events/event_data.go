package events

import (
	"encoding/json"
)

// EventData is the interface that all event data types must implement.
// This allows for type-safe event data while maintaining flexibility.
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// DayCompletedData contains data for DayCompleted events
type DayCompletedData struct {
	Date       string `json:"date"`
	NextDate   string `json:"next_date"`
	WasWeekday bool   `json:"was_weekday"`
}

// EventType returns the event type for DayCompletedData
func (d *DayCompletedData) EventType() EventType { return DayCompleted }

// SpeedChangedData contains data for SpeedChanged events
type SpeedChangedData struct {
	Speed float64 `json:"speed"`
}

// EventType returns the event type for SpeedChangedData
func (d *SpeedChangedData) EventType() EventType { return SpeedChanged }

// CharacterEventData contains data for character event lifecycle events.
// Status distinguishes queued, started and completed.
type CharacterEventData struct {
	EventID      string   `json:"event_id"`
	Kind         string   `json:"kind"`
	CharacterIDs []string `json:"character_ids"`
	Room         string   `json:"room"`
	Stock        string   `json:"stock,omitempty"`
	Message      string   `json:"message,omitempty"`
	Status       string   `json:"status"` // "queued", "started", "completed"
}

// EventType returns the event type for CharacterEventData
func (d *CharacterEventData) EventType() EventType {
	switch d.Status {
	case "started":
		return CharacterEventStarted
	case "completed":
		return CharacterEventCompleted
	default:
		return CharacterEventQueued
	}
}

// MarketEventData contains data for MarketEventCreated/Expired events
type MarketEventData struct {
	EventID     string  `json:"event_id"`
	Type        string  `json:"type"`
	Impact      string  `json:"impact"`
	Magnitude   float64 `json:"magnitude"`
	Description string  `json:"description,omitempty"`
	Expired     bool    `json:"expired,omitempty"`
}

// EventType returns the event type for MarketEventData
func (d *MarketEventData) EventType() EventType {
	if d.Expired {
		return MarketEventExpired
	}
	return MarketEventCreated
}

// OrderEventData contains data for order lifecycle events
type OrderEventData struct {
	OrderID  string  `json:"order_id"`
	Stock    string  `json:"stock"`
	Action   string  `json:"action"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
	Fees     float64 `json:"fees"`
	Status   string  `json:"status"` // "created", "executed", "cancelled", "rejected"
	Reason   string  `json:"reason,omitempty"`
}

// EventType returns the event type for OrderEventData
func (d *OrderEventData) EventType() EventType {
	switch d.Status {
	case "executed":
		return OrderExecuted
	case "cancelled":
		return OrderCancelled
	case "rejected":
		return OrderRejected
	default:
		return OrderCreated
	}
}

// PricesUpdatedData contains data for PricesUpdated events
type PricesUpdatedData struct {
	Symbols []string `json:"symbols"`
}

// EventType returns the event type for PricesUpdatedData
func (d *PricesUpdatedData) EventType() EventType { return PricesUpdated }

// PerformanceData contains data for PerformanceRecorded events
type PerformanceData struct {
	Date               string  `json:"date"`
	TotalValue         float64 `json:"total_value"`
	DailyChange        float64 `json:"daily_change"`
	DailyChangePercent float64 `json:"daily_change_percent"`
}

// EventType returns the event type for PerformanceData
func (d *PerformanceData) EventType() EventType { return PerformanceRecorded }

// SystemStatusData contains data for SystemStatusChanged events
type SystemStatusData struct {
	Status        string  `json:"status"` // "running", "paused", "completed"
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Timestamp     string  `json:"timestamp"`
}

// EventType returns the event type for SystemStatusData
func (d *SystemStatusData) EventType() EventType { return SystemStatusChanged }

// ActivityLoggedData contains data for ActivityLogged events
type ActivityLoggedData struct {
	EntryID     string `json:"entry_id"`
	CharacterID string `json:"character_id,omitempty"`
	ActionType  string `json:"action_type"`
	Description string `json:"description"`
}

// EventType returns the event type for ActivityLoggedData
func (d *ActivityLoggedData) EventType() EventType { return ActivityLogged }

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string            `json:"error"`
	Context map[string]string `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType { return ErrorOccurred }

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType { return d.Type }

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON customizes JSON deserialization for GenericEventData
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}

// MarshalJSON customizes JSON serialization for Event
func (e *Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	aux := &struct {
		Data json.RawMessage `json:"data,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON customizes JSON deserialization for Event
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.Data) > 0 {
		var eventData EventData
		switch aux.Type {
		case DayCompleted:
			eventData = &DayCompletedData{}
		case SpeedChanged:
			eventData = &SpeedChangedData{}
		case CharacterEventQueued, CharacterEventStarted, CharacterEventCompleted:
			eventData = &CharacterEventData{}
		case MarketEventCreated, MarketEventExpired:
			eventData = &MarketEventData{}
		case OrderCreated, OrderExecuted, OrderCancelled, OrderRejected:
			eventData = &OrderEventData{}
		case PricesUpdated:
			eventData = &PricesUpdatedData{}
		case PerformanceRecorded:
			eventData = &PerformanceData{}
		case SystemStatusChanged:
			eventData = &SystemStatusData{}
		case ActivityLogged:
			eventData = &ActivityLoggedData{}
		case ErrorOccurred:
			eventData = &ErrorEventData{}
		default:
			var rawData map[string]interface{}
			if err := json.Unmarshal(aux.Data, &rawData); err != nil {
				return err
			}
			eventData = &GenericEventData{Type: aux.Type, Data: rawData}
		}

		if err := json.Unmarshal(aux.Data, eventData); err != nil {
			return err
		}
		e.Data = eventData
	}

	return nil
}
