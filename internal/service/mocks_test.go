package service

import (
	"context"
	"encoding/json"
	"fmt"

	"deck_dev_v1_202608/internal/model"
)

// ==================== Mock 实现 ====================

// mockGenerator 按阶段给 canned JSON 的生成器
type mockGenerator struct {
	generateFn func(ctx context.Context, stage, deckID, system, user string, maxTokens int) (json.RawMessage, error)
	calls      []string
}

func (m *mockGenerator) Generate(ctx context.Context, stage, deckID, system, user string, maxTokens int) (json.RawMessage, error) {
	m.calls = append(m.calls, stage)
	if m.generateFn != nil {
		return m.generateFn(ctx, stage, deckID, system, user, maxTokens)
	}
	return defaultStageResponse(stage)
}

// defaultStageResponse 各阶段的默认合法输出
func defaultStageResponse(stage string) (json.RawMessage, error) {
	switch stage {
	case model.StageOutline:
		return json.RawMessage(`{
			"title": "Quarterly Review",
			"slides": [
				{"slideType": "title", "title": "Quarterly Review", "subtitle": "Q2 2026", "speakerNotes": "Welcome everyone to the review."},
				{"slideType": "content", "title": "Revenue Growth", "bullets": ["Revenue up 12%", "New enterprise deals closed", "Churn held at 2%"], "speakerNotes": "Open with the topline numbers and give credit to the sales team."},
				{"slideType": "content", "title": "Product Milestones", "bullets": ["Shipped the new editor", "Mobile beta live", "Latency cut in half", "Search rebuilt"], "speakerNotes": "Walk through each milestone briefly, demos come later."},
				{"slideType": "two_column", "title": "Wins vs Risks", "bullets": ["Win: retention", "Win: NPS up", "Risk: hiring pace", "Risk: infra cost"], "speakerNotes": "Balance the good news with what keeps us up at night."},
				{"slideType": "closing", "title": "Next Quarter", "bullets": ["Double down on enterprise", "Ship mobile GA"], "speakerNotes": "Close with the two bets for next quarter and open the floor."}
			]
		}`), nil
	case model.StageStyle:
		return json.RawMessage(`{"styleId": "aurora", "decoration": "dot_grid", "reason": "upbeat business review"}`), nil
	case model.StageLayout:
		return json.RawMessage(`{"boxes": [
			{"kind": "title", "x": 0.8, "y": 0.5, "w": 11.7, "h": 1.2, "fontSize": 32, "align": "left"},
			{"kind": "bullets", "x": 0.8, "y": 2.0, "w": 11.7, "h": 4.8, "fontSize": 18}
		]}`), nil
	case model.StageRefine:
		return json.RawMessage(`{"slides": []}`), nil
	case model.StageEdit:
		return json.RawMessage(`{"title": "Edited Title"}`), nil
	default:
		return nil, fmt.Errorf("unexpected stage %s", stage)
	}
}

// failingGenerator 永远失败的生成器
func failingGenerator() *mockGenerator {
	return &mockGenerator{
		generateFn: func(ctx context.Context, stage, deckID, system, user string, maxTokens int) (json.RawMessage, error) {
			return nil, fmt.Errorf("upstream unavailable")
		},
	}
}

// mockSearcher 图片检索 mock
type mockSearcher struct {
	searchFn func(ctx context.Context, query string) (*model.SelectedAsset, error)
}

func (m *mockSearcher) Search(ctx context.Context, query string) (*model.SelectedAsset, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return &model.SelectedAsset{
		ID:       "asset-1",
		Kind:     model.VisualPhoto,
		URL:      "https://example.com/photo.jpg",
		Provider: "mock",
		Query:    query,
	}, nil
}
