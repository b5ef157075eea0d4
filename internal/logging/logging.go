package logging

import (
	"encoding/json"
	"log"
	"time"
)

// Event is one structured log line. Empty fields are dropped from the
// JSON output.
type Event struct {
	Service       string `json:"service"`
	Event         string `json:"event"`
	OrderNumber   string `json:"order_number,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Outcome       string `json:"outcome,omitempty"`
	Severity      string `json:"severity,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// Log writes the event as a single JSON line on the standard logger.
func Log(e Event) {
	e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	if e.Service == "" {
		e.Service = "storefront"
	}
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("{\"service\":%q,\"event\":\"log_error\",\"error\":%q}", e.Service, err.Error())
		return
	}
	log.Print(string(data))
}

// Alert logs a security-relevant event at alert severity so it can be
// picked up by out-of-band monitoring.
func Alert(e Event) {
	e.Severity = "alert"
	Log(e)
}
