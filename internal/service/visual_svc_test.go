package service

import (
	"strings"
	"testing"

	"deck_dev_v1_202608/internal/model"
)

// ==================== 意图分类 ====================

func TestClassifyIntent(t *testing.T) {
	svc := NewVisualService()

	tests := []struct {
		name  string
		slide *model.Slide
		want  string
	}{
		{"标题页给照片", &model.Slide{SlideType: model.SlideTypeTitle, Title: "Kickoff"}, model.VisualPhoto},
		{"引用页留白", &model.Slide{SlideType: model.SlideTypeQuote, Title: "Growth mindset"}, model.VisualNone},
		{"结束页留白", &model.Slide{SlideType: model.SlideTypeClosing, Title: "Revenue recap"}, model.VisualNone},
		{"数据标题给图表", &model.Slide{SlideType: model.SlideTypeContent, Title: "Revenue Growth"}, model.VisualChart},
		{"流程标题给框图", &model.Slide{SlideType: model.SlideTypeContent, Title: "Onboarding Workflow"}, model.VisualDiagram},
		{"团队标题给照片", &model.Slide{SlideType: model.SlideTypeContent, Title: "Our Team"}, model.VisualPhoto},
		{"中文关键词", &model.Slide{SlideType: model.SlideTypeContent, Title: "季度增长回顾"}, model.VisualChart},
		{"两栏页给图标", &model.Slide{SlideType: model.SlideTypeTwoColumn, Title: "Plain"}, model.VisualIcon},
		{"普通内容页留白", &model.Slide{SlideType: model.SlideTypeContent, Title: "Misc Notes"}, model.VisualNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.ClassifyIntent(tt.slide); got != tt.want {
				t.Errorf("ClassifyIntent(%q) = %s, want %s", tt.slide.Title, got, tt.want)
			}
		})
	}
}

// ==================== SVG 生成 ====================

func TestGenerateSVG_ByIntent(t *testing.T) {
	svc := NewVisualService()
	theme := stylePresets[0]

	chart := svc.GenerateSVG(&model.Slide{
		VisualIntent: model.VisualChart,
		Bullets:      []string{"Revenue up", "Costs flat", "Churn down"},
	}, theme)
	if chart == nil || chart.Kind != model.VisualChart {
		t.Fatal("chart 意图未产出图表素材")
	}
	if !strings.Contains(chart.SVG, "<svg") || !strings.Contains(chart.SVG, theme.Palette.Primary) {
		t.Error("图表 SVG 缺少主题主色")
	}

	diagram := svc.GenerateSVG(&model.Slide{VisualIntent: model.VisualDiagram, Bullets: []string{"a", "b"}}, theme)
	if diagram == nil || diagram.Kind != model.VisualDiagram {
		t.Fatal("diagram 意图未产出框图素材")
	}

	icon := svc.GenerateSVG(&model.Slide{VisualIntent: model.VisualIcon}, theme)
	if icon == nil || icon.Kind != model.VisualIcon {
		t.Fatal("icon 意图未产出图标素材")
	}

	if none := svc.GenerateSVG(&model.Slide{VisualIntent: model.VisualNone}, theme); none != nil {
		t.Error("none 意图不应产出素材")
	}
	if photo := svc.GenerateSVG(&model.Slide{VisualIntent: model.VisualPhoto}, theme); photo != nil {
		t.Error("photo 意图不走 SVG 生成")
	}
}

func TestGenerateSVG_NilThemeUsesNeutral(t *testing.T) {
	// 素材阶段在风格选择之前，主题未定时必须仍可出图
	svc := NewVisualService()
	asset := svc.GenerateSVG(&model.Slide{VisualIntent: model.VisualChart, Bullets: []string{"x"}}, nil)

	if asset == nil {
		t.Fatal("无主题时应当使用中性配色出图")
	}
	if !strings.Contains(asset.SVG, neutralTheme.Palette.Primary) {
		t.Error("SVG 未使用中性配色")
	}
}

func TestGenerateSVG_Deterministic(t *testing.T) {
	svc := NewVisualService()
	slide := &model.Slide{VisualIntent: model.VisualChart, Bullets: []string{"alpha", "beta beta"}}

	a := svc.GenerateSVG(slide, stylePresets[0])
	b := svc.GenerateSVG(slide, stylePresets[0])
	if a.SVG != b.SVG {
		t.Error("相同输入的 SVG 内容必须一致")
	}
}
