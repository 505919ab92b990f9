// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// MessageIndexTask represents one appended conversation message that should
// be indexed into Elasticsearch for transcript search.
type MessageIndexTask struct {
	UserID    uint      `json:"user_id"`
	SessionID string    `json:"session_id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// DedupKey 返回任务的去重键，用于消费侧的失败计数。
func (t MessageIndexTask) DedupKey() string {
	return t.SessionID + ":" + t.Timestamp.UTC().Format(time.RFC3339Nano)
}
