package service

import (
	"context"
	"encoding/json"
	"testing"

	"deck_dev_v1_202608/internal/model"
)

// ==================== Sanitizer 测试 ====================

func TestSanitizePlan_ClampsToBounds(t *testing.T) {
	plan := &model.LayoutPlan{
		Boxes: []*model.Box{
			{Kind: model.BoxKindTitle, X: -5, Y: -2, W: 50, H: 30, FontSize: 500},
			{Kind: model.BoxKindBullets, X: 13.0, Y: 7.4, W: 9, H: 9, FontSize: 1},
			{Kind: model.BoxKindBody, X: 2, Y: 2, W: 0.01, H: 0.01},
			{Kind: model.BoxKindImage, X: 1, Y: 1, W: 4, H: 3, FontSize: 999},
		},
	}

	SanitizePlan(plan)

	if plan.Version != model.LayoutPlanVersion {
		t.Errorf("Version = %q, want %q", plan.Version, model.LayoutPlanVersion)
	}
	if plan.SlideW != model.SlideWidth || plan.SlideH != model.SlideHeight {
		t.Errorf("画布尺寸未补默认值: %v x %v", plan.SlideW, plan.SlideH)
	}

	for i, box := range plan.Boxes {
		if !box.InBounds(plan.SlideW, plan.SlideH) {
			t.Errorf("box[%d] 越界: x=%v y=%v w=%v h=%v", i, box.X, box.Y, box.W, box.H)
		}
		if box.ID == "" {
			t.Errorf("box[%d] 未分配 ID", i)
		}
	}

	// 字号按 kind 范围夹紧
	if got := plan.Boxes[0].FontSize; got != 44 {
		t.Errorf("title fontSize = %v, want 44", got)
	}
	if got := plan.Boxes[1].FontSize; got != 14 {
		t.Errorf("bullets fontSize = %v, want 14", got)
	}
	// 非文字 box 落回全局范围
	if got := plan.Boxes[3].FontSize; got != model.MaxFontSize {
		t.Errorf("image fontSize = %v, want %v", got, float64(model.MaxFontSize))
	}
}

func TestSanitizePlan_ZeroFontSizeUntouched(t *testing.T) {
	plan := &model.LayoutPlan{
		Boxes: []*model.Box{{Kind: model.BoxKindShape, X: 1, Y: 1, W: 2, H: 2}},
	}
	SanitizePlan(plan)

	if plan.Boxes[0].FontSize != 0 {
		t.Errorf("未设置的 fontSize 不应被补值, got %v", plan.Boxes[0].FontSize)
	}
}

// ==================== 模板边界测试 ====================

func TestTemplatePlan_AllTemplatesInBounds(t *testing.T) {
	theme := &model.Theme{
		HeadingFont: "Montserrat",
		BodyFont:    "Inter",
		Palette:     model.Palette{Text: "#111111", Surface: "#EEEEEE"},
	}
	asset := &model.SelectedAsset{ID: "a1", Kind: model.VisualPhoto, URL: "https://example.com/p.jpg"}

	slides := []*model.Slide{
		{SlideType: model.SlideTypeTitle, Title: "Kickoff"},
		{SlideType: model.SlideTypeTitle, Title: "Kickoff", SelectedAssets: []*model.SelectedAsset{asset}},
		{SlideType: model.SlideTypeSection, Title: "Part One"},
		{SlideType: model.SlideTypeQuote, Title: "Quote", BodyText: "Simplicity is the soul of efficiency."},
		{SlideType: model.SlideTypeTwoColumn, Title: "Pros & Cons", Bullets: []string{"a", "b", "c", "d"}},
		{SlideType: model.SlideTypeComparison, Title: "Before vs After", Bullets: []string{"a", "b"}},
		{SlideType: model.SlideTypeContent, Title: "Agenda", Bullets: []string{"a", "b", "c"}},
		{SlideType: model.SlideTypeContent, Title: "Roadmap Timeline", Bullets: []string{"a", "b"}},
		{SlideType: model.SlideTypeContent, Title: "Plain Content", Bullets: []string{"a"}},
		{SlideType: model.SlideTypeContent, Title: "With Image", Bullets: []string{"a"}, SelectedAssets: []*model.SelectedAsset{asset}},
		{SlideType: model.SlideTypeContent, Title: "Body Only", BodyText: "Some paragraph."},
		{SlideType: model.SlideTypeClosing, Title: "Thanks"},
	}

	for _, slide := range slides {
		plan := TemplatePlan(slide, theme)
		if len(plan.Boxes) == 0 {
			t.Errorf("%s/%s: 模板未产出任何 box", slide.SlideType, slide.Title)
		}
		for _, box := range plan.Boxes {
			if !box.InBounds(plan.SlideW, plan.SlideH) {
				t.Errorf("%s/%s: box %s 越界 x=%v y=%v w=%v h=%v",
					slide.SlideType, slide.Title, box.Kind, box.X, box.Y, box.W, box.H)
			}
		}
	}
}

func TestTemplatePlan_NilThemeFallback(t *testing.T) {
	slide := &model.Slide{SlideType: model.SlideTypeContent, Title: "X", Bullets: []string{"a"}}
	plan := TemplatePlan(slide, nil)

	for _, box := range plan.Boxes {
		if !box.InBounds(plan.SlideW, plan.SlideH) {
			t.Errorf("无主题时 box %s 越界", box.Kind)
		}
	}
}

func TestTemplatePlan_ImageBoxOnlyWithAsset(t *testing.T) {
	slide := &model.Slide{SlideType: model.SlideTypeContent, Title: "No Asset", Bullets: []string{"a"}}
	plan := TemplatePlan(slide, nil)
	for _, box := range plan.Boxes {
		if box.Kind == model.BoxKindImage {
			t.Error("无素材的页不应有 image box")
		}
	}
}

// ==================== 自适应字号测试 ====================

func TestEffectiveFontSize_MonotonicInTextLen(t *testing.T) {
	// 固定面积下文字越长字号只会不变或变小
	const base, area = 28.0, 20.0
	prev := EffectiveFontSize(base, 0, area)
	for textLen := 1; textLen <= 2000; textLen += 37 {
		size := EffectiveFontSize(base, textLen, area)
		if size > prev {
			t.Fatalf("textLen=%d: size %v > 前一档 %v, 违反单调性", textLen, size, prev)
		}
		prev = size
	}
}

func TestEffectiveFontSize_Steps(t *testing.T) {
	const area = 10.0
	tests := []struct {
		textLen int
		want    float64
	}{
		{100, 28},   // 密度 10 -> 系数 1.0
		{200, 23.8}, // 密度 20 -> 0.85
		{350, 19.6}, // 密度 35 -> 0.7
		{1000, 16.8}, // 密度 100 -> 下限 0.6
	}
	for _, tt := range tests {
		got := EffectiveFontSize(28, tt.textLen, area)
		if got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("EffectiveFontSize(28, %d, %v) = %v, want %v", tt.textLen, area, got, tt.want)
		}
	}
}

func TestEffectiveFontSize_Clamped(t *testing.T) {
	// 缩小后不会低于全局下限
	if got := EffectiveFontSize(12, 5000, 1); got != model.MinFontSize {
		t.Errorf("got %v, want %v", got, float64(model.MinFontSize))
	}
	// 零面积不除零
	if got := EffectiveFontSize(28, 100, 0); got < model.MinFontSize || got > model.MaxFontSize {
		t.Errorf("零面积结果 %v 超出 [%d,%d]", got, model.MinFontSize, model.MaxFontSize)
	}
}

// ==================== AI 布局回退测试 ====================

func TestPlanLayouts_FallsBackToTemplate(t *testing.T) {
	svc := NewLayoutService(failingGenerator())
	deck := &model.Deck{
		ID:    "d1",
		Theme: &model.Theme{HeadingFont: "Arial", BodyFont: "Arial"},
		Slides: []*model.Slide{
			{ID: "s1", Order: 0, SlideType: model.SlideTypeContent, Title: "A", Bullets: []string{"x"}},
			{ID: "s2", Order: 1, SlideType: model.SlideTypeContent, Title: "B", Bullets: []string{"y"}},
		},
	}

	warnings := svc.PlanLayouts(context.Background(), deck)

	if len(warnings) != 2 {
		t.Errorf("warnings = %d 条, want 2 (每页一条)", len(warnings))
	}
	for _, slide := range deck.Slides {
		if slide.LayoutPlan == nil {
			t.Fatalf("页 %s 回退后仍无布局", slide.ID)
		}
		for _, box := range slide.LayoutPlan.Boxes {
			if !box.InBounds(slide.LayoutPlan.SlideW, slide.LayoutPlan.SlideH) {
				t.Errorf("页 %s 回退布局越界", slide.ID)
			}
		}
	}
}

func TestPlanLayouts_SanitizesAIOutput(t *testing.T) {
	// AI 给出越界坐标时布局仍须满足边界不变式
	gen := &mockGenerator{
		generateFn: func(ctx context.Context, stage, deckID, system, user string, maxTokens int) (json.RawMessage, error) {
			return json.RawMessage(`{"boxes": [{"kind": "title", "x": -3, "y": 0.5, "w": 99, "h": 1.2, "fontSize": 200}]}`), nil
		},
	}
	svc := NewLayoutService(gen)
	deck := &model.Deck{
		ID:     "d1",
		Theme:  &model.Theme{HeadingFont: "Arial", BodyFont: "Arial"},
		Slides: []*model.Slide{{ID: "s1", Order: 0, SlideType: model.SlideTypeContent, Title: "A"}},
	}

	warnings := svc.PlanLayouts(context.Background(), deck)
	if len(warnings) != 0 {
		t.Errorf("schema 合法的输出不应产生告警: %v", warnings)
	}

	plan := deck.Slides[0].LayoutPlan
	box := plan.Boxes[0]
	if !box.InBounds(plan.SlideW, plan.SlideH) {
		t.Errorf("纠偏后仍越界: x=%v w=%v", box.X, box.W)
	}
	if box.FontSize > 44 {
		t.Errorf("title fontSize = %v, 未夹紧", box.FontSize)
	}
}
