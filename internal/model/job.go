package model

// AnalysisResult 的状态值，与 Agent 服务的结果接口对应。
const (
	ResultStatusReady    = "ready"
	ResultStatusNotReady = "not_ready"
)

// AnalysisJob 描述一次提交给分析 Agent 的任务。
// 它只在单次请求的生命周期内存在，不做持久化。
// CorrelationID 每个任务独立生成，同一个会话可以先后产生多个任务。
type AnalysisJob struct {
	CorrelationID string `json:"correlationId"`
	UserID        uint   `json:"-"`
	SessionID     string `json:"sessionId"`
	Query         string `json:"query"`
	DocumentRef   string `json:"documentRef"`
	Username      string `json:"username"`
}

// AnalysisResult 是 Agent 服务返回的分析结果。
// 只有 CorrelationID 与等待中的任务一致时才会被采纳。
type AnalysisResult struct {
	CorrelationID string         `json:"correlationId"`
	Status        string         `json:"status"`
	Summary       string         `json:"summary"`
	Steps         []AnalysisStep `json:"steps,omitempty"`
	Visualization string         `json:"visualization,omitempty"`
	Error         string         `json:"error,omitempty"`
}
