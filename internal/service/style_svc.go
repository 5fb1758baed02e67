package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"deck_dev_v1_202608/internal/model"
)

// ==================== 风格预设 ====================

// stylePresets 闭合的主题枚举，AI 只能从中挑选
var stylePresets = []*model.Theme{
	{
		ID:   "aurora",
		Name: "Aurora",
		Palette: model.Palette{
			Primary: "#4F46E5", Secondary: "#818CF8", Background: "#FFFFFF",
			Surface: "#EEF2FF", Text: "#1E1B4B", Accent: "#F59E0B",
		},
		HeadingFont: "Montserrat",
		BodyFont:    "Inter",
		Decorations: []string{"corner_arc", "dot_grid"},
	},
	{
		ID:   "slate",
		Name: "Slate",
		Palette: model.Palette{
			Primary: "#0F172A", Secondary: "#475569", Background: "#F8FAFC",
			Surface: "#E2E8F0", Text: "#0F172A", Accent: "#0EA5E9",
		},
		HeadingFont: "Source Sans Pro",
		BodyFont:    "Source Sans Pro",
		Decorations: []string{"side_bar"},
	},
	{
		ID:   "ember",
		Name: "Ember",
		Palette: model.Palette{
			Primary: "#B91C1C", Secondary: "#F87171", Background: "#FFFBEB",
			Surface: "#FEF3C7", Text: "#451A03", Accent: "#D97706",
		},
		HeadingFont: "Playfair Display",
		BodyFont:    "Lato",
		Decorations: []string{"corner_arc"},
	},
	{
		ID:   "forest",
		Name: "Forest",
		Palette: model.Palette{
			Primary: "#166534", Secondary: "#4ADE80", Background: "#F0FDF4",
			Surface: "#DCFCE7", Text: "#052E16", Accent: "#CA8A04",
		},
		HeadingFont: "Merriweather",
		BodyFont:    "Open Sans",
		Decorations: []string{"dot_grid"},
	},
	{
		ID:   "mono",
		Name: "Mono",
		Palette: model.Palette{
			Primary: "#18181B", Secondary: "#71717A", Background: "#FAFAFA",
			Surface: "#F4F4F5", Text: "#18181B", Accent: "#18181B",
		},
		HeadingFont: "IBM Plex Sans",
		BodyFont:    "IBM Plex Sans",
		Decorations: nil,
	},
}

// DefaultThemeID 所有回退路径使用的主题
const DefaultThemeID = "slate"

// ==================== 服务 ====================

type StyleService struct {
	generator TextGenerator
}

func NewStyleService(generator TextGenerator) *StyleService {
	return &StyleService{generator: generator}
}

// Presets 返回全部预设（响应里的 stylePresets 字段）
func (s *StyleService) Presets() []*model.Theme {
	return stylePresets
}

// ThemeByID 按 ID 查找预设，找不到返回 nil
func (s *StyleService) ThemeByID(id string) *model.Theme {
	for _, t := range stylePresets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// DefaultTheme 回退主题
func (s *StyleService) DefaultTheme() *model.Theme {
	return s.ThemeByID(DefaultThemeID)
}

// ==================== 风格选择 ====================

// styleChoice AI 输出的形状
type styleChoice struct {
	StyleID    string `json:"styleId"`
	Decoration string `json:"decoration"`
	Reason     string `json:"reason"`
}

func styleSchema() *Schema {
	ids := make([]string, 0, len(stylePresets))
	for _, t := range stylePresets {
		ids = append(ids, t.ID)
	}
	return &Schema{Fields: []Field{
		{Name: "styleId", Kind: FieldString, Required: true, Enum: ids},
		{Name: "decoration", Kind: FieldString, Enum: []string{"corner_arc", "dot_grid", "side_bar", "none"}},
		{Name: "reason", Kind: FieldString},
	}}
}

// SelectTheme 为整套 Deck 选择一个主题
// 请求里指定了有效 theme 时直接采用；AI 失败时回退到默认主题并返回告警
func (s *StyleService) SelectTheme(ctx context.Context, deckID, prompt, designPrompt, requested string) (*model.Theme, string, []string) {
	if requested != "" {
		if t := s.ThemeByID(requested); t != nil {
			return t, "", nil
		}
	}

	user := fmt.Sprintf("Topic: %s", prompt)
	if designPrompt != "" {
		user += fmt.Sprintf("\nDesign direction: %s", designPrompt)
	}
	user += fmt.Sprintf(`

Pick the best matching style preset. Available presets: %s
Output JSON only: {"styleId": "...", "decoration": "corner_arc|dot_grid|side_bar|none", "reason": "..."}`,
		strings.Join(presetDescriptions(), "; "))

	result := ValidateContract[styleChoice]("style selector", styleSchema(), func() (json.RawMessage, error) {
		return s.generator.Generate(ctx, model.StageStyle, deckID,
			"You are a presentation art director. You only answer with JSON.", user, 512)
	})

	if !result.OK {
		return s.DefaultTheme(), "", []string{"风格选择失败，使用默认主题: " + result.Err}
	}

	theme := s.ThemeByID(result.Value.StyleID)
	if theme == nil {
		return s.DefaultTheme(), "", []string{"风格选择返回未知预设，使用默认主题"}
	}

	decoration := result.Value.Decoration
	if decoration == "none" {
		decoration = ""
	}
	return theme, decoration, nil
}

func presetDescriptions() []string {
	out := make([]string, 0, len(stylePresets))
	for _, t := range stylePresets {
		out = append(out, fmt.Sprintf("%s (%s, heading %s)", t.ID, t.Name, t.HeadingFont))
	}
	return out
}
