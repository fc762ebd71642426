package amqp

import (
	"encoding/json"
	"time"
)

// ReportExportMessage asks the export worker to append a monthly report
// summary to the spreadsheet. It carries only the report coordinates; the
// worker regenerates the report through the report service, so the queue
// never holds stale payloads.
type ReportExportMessage struct {
	UserID    string    `json:"userId"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReportExportMessage(userID string, year, month int) *ReportExportMessage {
	return &ReportExportMessage{
		UserID:    userID,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *ReportExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportExportMessageFromJSON(data []byte) (*ReportExportMessage, error) {
	var msg ReportExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EventMessage is a live event fanned out to a user's connected clients
// through the topic exchange (routing key "user.<id>").
type EventMessage struct {
	UserID    string          `json:"userId"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
