package dto

// ==================== 流式事件 ====================

// 事件名（SSE event 字段）
const (
	EventStageStart = "stage_start"
	EventStageEnd   = "stage_end"
	EventArtifact   = "artifact"
	EventWarning    = "warning"
	EventDone       = "done"
	EventError      = "error"
)

// StreamEvent 单向推送的进度事件
// 编排器只写不等，消费端断开不会阻塞生成
type StreamEvent struct {
	Event   string      `json:"event"`
	Stage   string      `json:"stage,omitempty"`
	Name    string      `json:"name,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// DoneEvent 终止事件负载
type DoneEvent struct {
	DeckID   string      `json:"deckId"`
	QA       interface{} `json:"qa,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}
