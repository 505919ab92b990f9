// Package model 包含了应用的数据模型定义。
package model

import "time"

// AnswerPayload 的类型标记，区分正常分析结果、纯文本聊天与降级回答。
const (
	AnswerKindAnalysis = "analysis"
	AnswerKindChat     = "chat"
	AnswerKindDegraded = "degraded"
)

// AnalysisStep 代表分析 Agent 流水线中单个子 Agent 产出的一段文本。
type AnalysisStep struct {
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

// AnswerPayload 是带类型标记的回答载荷。
// 下游消费方根据 Kind 区分各个分支，而不需要再次解析字符串化的 JSON。
type AnswerPayload struct {
	Kind          string         `json:"kind"`
	Summary       string         `json:"summary,omitempty"`
	Steps         []AnalysisStep `json:"steps,omitempty"`
	Visualization string         `json:"visualization,omitempty"`
	DegradedNote  string         `json:"degradedNote,omitempty"`
}

// Message 代表会话中的一条问答记录，追加后不再修改。
type Message struct {
	Query     string        `json:"query"`
	Answer    AnswerPayload `json:"answer"`
	Timestamp time.Time     `json:"timestamp"`
}

// SessionMeta 是会话的元数据，不包含消息本身。
type SessionMeta struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionTranscript 是一个会话的完整记录，消息按插入顺序排列。
type SessionTranscript struct {
	SessionMeta
	Messages []Message `json:"messages"`
}
