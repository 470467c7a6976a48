package amqp

import (
	"encoding/json"
	"time"
)

// GoalAlertMessage carries a goal status alert from the API to the
// notification worker.
type GoalAlertMessage struct {
	GoalID    int64     `json:"goal_id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewGoalAlertMessage creates an alert message for a goal
func NewGoalAlertMessage(goalID int64, level, message string) *GoalAlertMessage {
	return &GoalAlertMessage{
		GoalID:    goalID,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *GoalAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// GoalAlertMessageFromJSON creates a message from JSON bytes
func GoalAlertMessageFromJSON(data []byte) (*GoalAlertMessage, error) {
	var msg GoalAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
