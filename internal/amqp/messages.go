package amqp

import (
	"encoding/json"
	"time"
)

// ImportCompletedMessage announces a finished upload.
type ImportCompletedMessage struct {
	SessionID    string            `json:"session_id"`
	FileName     string            `json:"file_name"`
	Rows         int               `json:"rows"`
	SkippedRows  int               `json:"skipped_rows"`
	TotalExpense string            `json:"total_expense"`
	TotalIncome  string            `json:"total_income"`
	Categories   map[string]int    `json:"categories"`
	Spending     map[string]string `json:"spending"`
	Timestamp    time.Time         `json:"timestamp"`
}

func (m *ImportCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportCompletedMessageFromJSON decodes a message body.
func ImportCompletedMessageFromJSON(data []byte) (*ImportCompletedMessage, error) {
	var msg ImportCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
