package model

import "time"

// EsMessage 是写入 Elasticsearch 的会话消息文档，用于历史记录全文检索。
type EsMessage struct {
	DocID     string    `json:"doc_id"`
	UserID    uint      `json:"user_id"`
	SessionID string    `json:"session_id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchHit 是历史记录检索接口返回给前端的单条命中结果。
type SearchHit struct {
	SessionID string    `json:"sessionId"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
}
