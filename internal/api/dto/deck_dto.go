package dto

import "deck_dev_v1_202608/internal/model"

// ==================== 生成 ====================

// GenerateDeckRequest 生成请求
type GenerateDeckRequest struct {
	Prompt         string `json:"prompt" binding:"required"`
	DesignPrompt   string `json:"designPrompt,omitempty"`
	SlideCount     int    `json:"slideCount,omitempty"` // 1-30，0 表示交给大纲决定
	Theme          string `json:"theme,omitempty"`      // 指定主题 ID，跳过风格选择
	TargetAudience string `json:"targetAudience,omitempty"`
	Tone           string `json:"tone,omitempty"`
}

// GenerateDeckResult 生成结果
type GenerateDeckResult struct {
	Success            bool            `json:"success"`
	Deck               *model.Deck     `json:"deck,omitempty"`
	StylePresets       []*model.Theme  `json:"stylePresets,omitempty"`
	RecommendedStyleID string          `json:"recommendedStyleId,omitempty"`
	QA                 *model.QaReport `json:"qa,omitempty"`
	Warnings           []string        `json:"warnings,omitempty"`
	Error              string          `json:"error,omitempty"`
}

// ==================== 单页编辑 ====================

// SlideEditRequest AI 编辑或直接 patch 单页
// Patch 中的 id / order 字段始终被忽略
type SlideEditRequest struct {
	Instruction string                 `json:"instruction,omitempty"`
	Patch       map[string]interface{} `json:"patch,omitempty"`
}

// SlideEditResult 编辑结果
type SlideEditResult struct {
	Success  bool                   `json:"success"`
	SlideID  string                 `json:"slideId"`
	Patch    map[string]interface{} `json:"patch"`
	Warnings []string               `json:"warnings,omitempty"`
}

// ==================== QA / 修复 ====================

// QaRunResult QA 执行结果
type QaRunResult struct {
	Success bool            `json:"success"`
	DeckID  string          `json:"deckId"`
	Report  *model.QaReport `json:"report"`
}

// RepairResult 修复结果
type RepairResult struct {
	Success bool            `json:"success"`
	DeckID  string          `json:"deckId"`
	Report  *model.QaReport `json:"report"`
	Actions []string        `json:"actions"`
}

// ==================== 查询 ====================

// DeckSummary Deck 摘要（列表用）
type DeckSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	SlideCount int    `json:"slideCount"`
	UpdatedAt  string `json:"updatedAt"`
}
