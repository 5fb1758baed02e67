package service

import (
	"context"
	"encoding/json"
	"testing"

	"deck_dev_v1_202608/internal/api/dto"
	"deck_dev_v1_202608/internal/model"
	"deck_dev_v1_202608/internal/repository"
)

// ==================== 编排器组装 ====================

func newTestOrchestrator(gen TextGenerator, store *repository.DeckStore) *OrchestratorService {
	qa := NewQaService(nil)
	return NewOrchestratorService(
		NewOutlineService(gen),
		NewVisualService(),
		NewAssetService(NewVisualService(), &mockSearcher{}, nil),
		NewStyleService(gen),
		NewRefineService(gen),
		NewLayoutService(gen),
		qa,
		NewRepairService(nil, qa),
		store,
	)
}

// ==================== 端到端 ====================

func TestGenerate_EndToEnd(t *testing.T) {
	store := repository.NewDeckStore()
	orch := newTestOrchestrator(&mockGenerator{}, store)

	result := orch.Generate(context.Background(), &dto.GenerateDeckRequest{
		Prompt:     "Quarterly review",
		SlideCount: 5,
	}, nil)

	if !result.Success {
		t.Fatalf("Success = false, error = %s", result.Error)
	}
	deck := result.Deck
	if len(deck.Slides) != 5 {
		t.Fatalf("页数 = %d, want 5", len(deck.Slides))
	}

	// order 致密、每页有布局、布局全部在界内
	for i, slide := range deck.Slides {
		if slide.Order != i {
			t.Errorf("slides[%d].Order = %d", i, slide.Order)
		}
		if slide.LayoutPlan == nil {
			t.Fatalf("slides[%d] 无布局", i)
		}
		for _, box := range slide.LayoutPlan.Boxes {
			if !box.InBounds(slide.LayoutPlan.SlideW, slide.LayoutPlan.SlideH) {
				t.Errorf("slides[%d] box %s 越界", i, box.Kind)
			}
		}
	}

	// 主题来自 mock 的风格选择
	if deck.Theme == nil || deck.Theme.ID != "aurora" {
		t.Errorf("Theme = %+v, want aurora", deck.Theme)
	}
	if result.RecommendedStyleID != "aurora" {
		t.Errorf("RecommendedStyleID = %q", result.RecommendedStyleID)
	}
	if len(result.StylePresets) == 0 {
		t.Error("响应必须携带全部风格预设")
	}

	// QA 报告结构
	if result.QA == nil {
		t.Fatal("QA 报告缺失")
	}
	if result.QA.Score < 0 || result.QA.Score > 100 {
		t.Errorf("QA.Score = %d, 超出 [0,100]", result.QA.Score)
	}

	// 生成完成后 Deck 必须可从存储取回
	stored, err := store.Get(deck.ID)
	if err != nil {
		t.Fatalf("存储取回失败: %v", err)
	}
	if stored.ID != deck.ID {
		t.Error("存储中的 Deck 不一致")
	}
}

func TestGenerate_AllStagesShareDeckID(t *testing.T) {
	// 大纲阶段先于 Deck 组装发生，调用日志的 deck_id 也必须与成品一致
	stageDeckIDs := map[string]string{}
	gen := &mockGenerator{
		generateFn: func(ctx context.Context, stage, deckID, system, user string, maxTokens int) (json.RawMessage, error) {
			stageDeckIDs[stage] = deckID
			return defaultStageResponse(stage)
		},
	}
	store := repository.NewDeckStore()
	orch := newTestOrchestrator(gen, store)

	result := orch.Generate(context.Background(), &dto.GenerateDeckRequest{
		Prompt:     "Quarterly review",
		SlideCount: 5,
	}, nil)

	if !result.Success {
		t.Fatalf("Success = false, error = %s", result.Error)
	}
	if stageDeckIDs[model.StageOutline] == "" {
		t.Fatal("大纲阶段调用的 deck_id 为空")
	}
	for stage, id := range stageDeckIDs {
		if id != result.Deck.ID {
			t.Errorf("阶段 %s 的 deck_id = %q, want %q", stage, id, result.Deck.ID)
		}
	}
}

func TestGenerate_AllAIDownStillSucceeds(t *testing.T) {
	// AI 全挂：大纲/风格/布局全部回退，生成仍须给出可用结果
	store := repository.NewDeckStore()
	orch := newTestOrchestrator(failingGenerator(), store)

	result := orch.Generate(context.Background(), &dto.GenerateDeckRequest{
		Prompt:     "Disaster recovery drill",
		SlideCount: 5,
	}, nil)

	if !result.Success {
		t.Fatalf("全回退仍应成功, error = %s", result.Error)
	}
	if len(result.Warnings) == 0 {
		t.Error("回退路径必须带告警")
	}
	if len(result.Deck.Slides) != 5 {
		t.Errorf("页数 = %d, want 5", len(result.Deck.Slides))
	}
	if result.Deck.Theme.ID != DefaultThemeID {
		t.Errorf("Theme = %s, want 默认 %s", result.Deck.Theme.ID, DefaultThemeID)
	}
	for _, slide := range result.Deck.Slides {
		if slide.LayoutPlan == nil {
			t.Error("回退布局缺失")
		}
	}
}

// ==================== 事件流 ====================

func TestGenerate_EmitsStageEvents(t *testing.T) {
	store := repository.NewDeckStore()
	orch := newTestOrchestrator(&mockGenerator{}, store)

	events := make(chan dto.StreamEvent, 256)
	orch.Generate(context.Background(), &dto.GenerateDeckRequest{
		Prompt:     "Quarterly review",
		SlideCount: 5,
	}, events)
	close(events)

	var started []string
	var doneSeen bool
	for ev := range events {
		switch ev.Event {
		case dto.EventStageStart:
			started = append(started, ev.Stage)
		case dto.EventDone:
			doneSeen = true
		}
	}

	wantOrder := []string{
		model.StageOutline, model.StageVisualIntent, model.StageAssets,
		model.StageStyle, model.StageLayout, model.StageQA,
	}
	if len(started) != len(wantOrder) {
		t.Fatalf("stage_start = %v, want %v", started, wantOrder)
	}
	for i, stage := range wantOrder {
		if started[i] != stage {
			t.Errorf("阶段[%d] = %s, want %s", i, started[i], stage)
		}
	}
	if !doneSeen {
		t.Error("缺少 done 事件")
	}
}

func TestGenerate_NilSinkDoesNotBlock(t *testing.T) {
	store := repository.NewDeckStore()
	orch := newTestOrchestrator(&mockGenerator{}, store)

	// sink 为 nil 或容量为零都不允许阻塞生成
	result := orch.Generate(context.Background(), &dto.GenerateDeckRequest{Prompt: "x", SlideCount: 3}, nil)
	if !result.Success {
		t.Fatalf("nil sink 生成失败: %s", result.Error)
	}

	full := make(chan dto.StreamEvent) // 无缓冲且无人消费
	result = orch.Generate(context.Background(), &dto.GenerateDeckRequest{Prompt: "x", SlideCount: 3}, full)
	if !result.Success {
		t.Fatalf("满 sink 生成失败: %s", result.Error)
	}
}

// ==================== 终检 ====================

func TestValidateDeck(t *testing.T) {
	good := &model.Deck{
		ID:    "d1",
		Title: "ok",
		Theme: stylePresets[0],
		Slides: []*model.Slide{
			{ID: "s1", Order: 0, SlideType: model.SlideTypeTitle, Title: "A"},
			{ID: "s2", Order: 1, SlideType: model.SlideTypeContent, Title: "B"},
		},
	}
	if err := validateDeck(good); err != nil {
		t.Errorf("合法 Deck 终检失败: %v", err)
	}

	sparse := &model.Deck{
		ID:    "d2",
		Title: "bad",
		Theme: stylePresets[0],
		Slides: []*model.Slide{
			{ID: "s1", Order: 0, SlideType: model.SlideTypeTitle, Title: "A"},
			{ID: "s2", Order: 5, SlideType: model.SlideTypeContent, Title: "B"},
		},
	}
	if err := validateDeck(sparse); err == nil {
		t.Error("order 不致密应当被终检拦下")
	}

	outOfBounds := &model.Deck{
		ID:    "d3",
		Title: "bad",
		Theme: stylePresets[0],
		Slides: []*model.Slide{
			{ID: "s1", Order: 0, SlideType: model.SlideTypeTitle, Title: "A",
				LayoutPlan: &model.LayoutPlan{
					SlideW: model.SlideWidth, SlideH: model.SlideHeight,
					Boxes: []*model.Box{{ID: "b", Kind: model.BoxKindTitle, X: -1, Y: 0, W: 2, H: 1}},
				}},
		},
	}
	if err := validateDeck(outOfBounds); err == nil {
		t.Error("越界布局应当被终检拦下")
	}

	noTheme := &model.Deck{ID: "d4", Title: "bad", Slides: []*model.Slide{}}
	if err := validateDeck(noTheme); err == nil {
		t.Error("缺主题应当被终检拦下")
	}
}
