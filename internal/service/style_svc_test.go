package service

import (
	"context"
	"testing"
)

// ==================== 主题选择 ====================

func TestSelectTheme_RequestedThemeSkipsAI(t *testing.T) {
	// 显式指定有效主题时不应发起任何 AI 调用
	gen := failingGenerator()
	svc := NewStyleService(gen)

	theme, decoration, warnings := svc.SelectTheme(context.Background(), "d1", "any topic", "", "ember")

	if theme == nil || theme.ID != "ember" {
		t.Fatalf("theme = %+v, want ember", theme)
	}
	if decoration != "" || len(warnings) != 0 {
		t.Errorf("直选主题不应有装饰或告警: %q %v", decoration, warnings)
	}
	if len(gen.calls) != 0 {
		t.Errorf("直选主题不应调用生成器: %v", gen.calls)
	}
}

func TestSelectTheme_AIChoice(t *testing.T) {
	svc := NewStyleService(&mockGenerator{})

	theme, decoration, warnings := svc.SelectTheme(context.Background(), "d1", "upbeat review", "", "")

	if theme.ID != "aurora" {
		t.Errorf("theme = %s, want aurora", theme.ID)
	}
	if decoration != "dot_grid" {
		t.Errorf("decoration = %q, want dot_grid", decoration)
	}
	if len(warnings) != 0 {
		t.Errorf("不应有告警: %v", warnings)
	}
}

func TestSelectTheme_FallbackToDefault(t *testing.T) {
	svc := NewStyleService(failingGenerator())

	theme, _, warnings := svc.SelectTheme(context.Background(), "d1", "any topic", "", "")

	if theme.ID != DefaultThemeID {
		t.Errorf("theme = %s, want %s", theme.ID, DefaultThemeID)
	}
	if len(warnings) == 0 {
		t.Error("回退路径必须带告警")
	}
}

func TestSelectTheme_UnknownRequestedFallsThrough(t *testing.T) {
	// 未知主题 ID 不直选，落到 AI 选择
	svc := NewStyleService(&mockGenerator{})

	theme, _, _ := svc.SelectTheme(context.Background(), "d1", "topic", "", "no-such-theme")
	if theme.ID != "aurora" {
		t.Errorf("theme = %s, want aurora (AI 选择)", theme.ID)
	}
}

// ==================== 预设 ====================

func TestPresets_ClosedSet(t *testing.T) {
	svc := NewStyleService(nil)

	presets := svc.Presets()
	if len(presets) == 0 {
		t.Fatal("预设不能为空")
	}

	seen := map[string]bool{}
	for _, p := range presets {
		if p.ID == "" || seen[p.ID] {
			t.Errorf("预设 ID %q 重复或为空", p.ID)
		}
		seen[p.ID] = true
		if p.Palette.Primary == "" || p.Palette.Background == "" || p.Palette.Text == "" {
			t.Errorf("预设 %s 配色不完整", p.ID)
		}
		if p.HeadingFont == "" || p.BodyFont == "" {
			t.Errorf("预设 %s 字体不完整", p.ID)
		}
	}

	if !seen[DefaultThemeID] {
		t.Errorf("默认主题 %s 必须在预设中", DefaultThemeID)
	}
	if svc.ThemeByID("nope") != nil {
		t.Error("未知 ID 应当返回 nil")
	}
}
