package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operations carried by sync messages. The worker replays them against the
// spreadsheet in publish order, so the mirror stays aligned with the local
// ledger.
const (
	OpAppend   = "append"
	OpCategory = "category"
	OpDelete   = "delete"
)

// SyncMessage tells the worker to mirror one ledger operation. It carries the
// row position, not the row data; the worker reads the row from storage.
type SyncMessage struct {
	Op        string    `json:"op"`
	Row       int64     `json:"row"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAppendMessage(row int64) *SyncMessage {
	return &SyncMessage{Op: OpAppend, Row: row, Timestamp: time.Now()}
}

func NewCategoryMessage(row int64, category string) *SyncMessage {
	return &SyncMessage{Op: OpCategory, Row: row, Category: category, Timestamp: time.Now()}
}

func NewDeleteMessage() *SyncMessage {
	return &SyncMessage{Op: OpDelete, Timestamp: time.Now()}
}

func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Op {
	case OpAppend, OpCategory, OpDelete:
	default:
		return nil, fmt.Errorf("unknown sync operation: %q", msg.Op)
	}
	return &msg, nil
}
