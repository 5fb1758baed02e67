package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"deck_dev_v1_202608/internal/model"

	"github.com/google/uuid"
)

// ==================== 布局规划 ====================

// LayoutService 几何核心：把页面内容 + 主题转成有界的 Box 布局
// AI 只在这里被允许给出具体几何，且输出必须先过 schema 再过 clamp
type LayoutService struct {
	generator TextGenerator
}

func NewLayoutService(generator TextGenerator) *LayoutService {
	return &LayoutService{generator: generator}
}

// candidatePlan AI 输出的形状
type candidatePlan struct {
	Boxes []*model.Box `json:"boxes"`
}

func layoutSchema() *Schema {
	return &Schema{Fields: []Field{
		{Name: "boxes", Kind: FieldArray, Required: true, Items: &Field{
			Kind: FieldObject,
			Fields: []Field{
				{Name: "id", Kind: FieldString},
				{Name: "kind", Kind: FieldString, Required: true, Enum: model.BoxKinds},
				{Name: "x", Kind: FieldNumber, Required: true},
				{Name: "y", Kind: FieldNumber, Required: true},
				{Name: "w", Kind: FieldNumber, Required: true},
				{Name: "h", Kind: FieldNumber, Required: true},
				{Name: "fontFace", Kind: FieldString},
				{Name: "fontSize", Kind: FieldNumber},
				{Name: "color", Kind: FieldString},
				{Name: "fill", Kind: FieldString},
				{Name: "line", Kind: FieldString},
				{Name: "radius", Kind: FieldNumber},
				{Name: "align", Kind: FieldString, Enum: []string{"left", "center", "right"}},
				{Name: "valign", Kind: FieldString, Enum: []string{"top", "middle", "bottom"}},
			},
		}},
	}}
}

// PlanLayouts 为每页生成 LayoutPlan
// 单页失败只记一条告警并落到确定性模板，绝不阻塞其他页
func (s *LayoutService) PlanLayouts(ctx context.Context, deck *model.Deck) []string {
	var warnings []string
	for _, slide := range deck.Slides {
		plan, warn := s.planSlide(ctx, deck, slide)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		slide.LayoutPlan = plan
	}
	return warnings
}

func (s *LayoutService) planSlide(ctx context.Context, deck *model.Deck, slide *model.Slide) (*model.LayoutPlan, string) {
	user := layoutPrompt(deck, slide)

	result := ValidateContract[candidatePlan]("layout planner", layoutSchema(), func() (json.RawMessage, error) {
		return s.generator.Generate(ctx, model.StageLayout, deck.ID,
			"You are a slide layout engine. You only answer with JSON.", user, 2048)
	})

	if !result.OK || len(result.Value.Boxes) == 0 {
		// schema 整体不符：该页落到确定性模板
		return TemplatePlan(slide, deck.Theme),
			fmt.Sprintf("第 %d 页布局生成失败，使用模板: %s", slide.Order+1, result.Err)
	}

	plan := &model.LayoutPlan{
		Version: model.LayoutPlanVersion,
		SlideW:  model.SlideWidth,
		SlideH:  model.SlideHeight,
		Boxes:   result.Value.Boxes,
	}
	SanitizePlan(plan)
	return plan, ""
}

// layoutPrompt 布局提示词，把边界约束写进契约
func layoutPrompt(deck *model.Deck, slide *model.Slide) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Design a layout for one 16:9 slide on a %.3f x %.1f inch canvas.\n\n", model.SlideWidth, model.SlideHeight)
	fmt.Fprintf(&sb, "Slide type: %s\nTitle: %s\n", slide.SlideType, slide.Title)
	if slide.Subtitle != "" {
		fmt.Fprintf(&sb, "Subtitle: %s\n", slide.Subtitle)
	}
	if len(slide.Bullets) > 0 {
		fmt.Fprintf(&sb, "Bullets (%d): %s\n", len(slide.Bullets), strings.Join(slide.Bullets, " | "))
	}
	if slide.BodyText != "" {
		fmt.Fprintf(&sb, "Body text: %s\n", slide.BodyText)
	}
	fmt.Fprintf(&sb, "Has image asset: %v\n", slide.HasImage())
	fmt.Fprintf(&sb, "Heading font: %s, body font: %s\n", deck.Theme.HeadingFont, deck.Theme.BodyFont)
	sb.WriteString(`
Rules:
- kind must be one of title, subtitle, bullets, body, image, shape
- all coordinates in canvas units, every box inside the canvas, no overlaps
- include an image box only when an image asset is attached
- fontSize between 10 and 54

Output JSON only: {"boxes": [{"kind": "title", "x": 0.8, "y": 0.5, "w": 11.7, "h": 1.2, "fontSize": 32, "align": "left"}]}`)
	return sb.String()
}

// ==================== Sanitizer ====================

// 字号的实用范围，比 schema 的 [10,54] 更紧
var fontRanges = map[string][2]float64{
	model.BoxKindTitle:    {18, 44},
	model.BoxKindSubtitle: {14, 32},
	model.BoxKindBullets:  {14, 28},
	model.BoxKindBody:     {14, 28},
}

// SanitizePlan 就地夹紧每个 Box，保证边界不变式成立
func SanitizePlan(plan *model.LayoutPlan) {
	if plan.SlideW <= 0 {
		plan.SlideW = model.SlideWidth
	}
	if plan.SlideH <= 0 {
		plan.SlideH = model.SlideHeight
	}
	if plan.Version == "" {
		plan.Version = model.LayoutPlanVersion
	}

	for _, box := range plan.Boxes {
		if box.ID == "" {
			box.ID = uuid.NewString()
		}

		box.X = clamp(box.X, 0, plan.SlideW-model.MinBoxSize)
		box.Y = clamp(box.Y, 0, plan.SlideH-model.MinBoxSize)
		box.W = clamp(box.W, model.MinBoxSize, plan.SlideW-box.X)
		box.H = clamp(box.H, model.MinBoxSize, plan.SlideH-box.Y)

		if box.FontSize != 0 {
			lo, hi := float64(model.MinFontSize), float64(model.MaxFontSize)
			if r, ok := fontRanges[box.Kind]; ok {
				lo, hi = r[0], r[1]
			}
			box.FontSize = clamp(box.FontSize, lo, hi)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ==================== 自适应字号 ====================

// 密度阶梯（字符数 / 平方英寸），单调不增
var shrinkSteps = []struct {
	maxDensity float64
	factor     float64
}{
	{12, 1.0},
	{24, 0.85},
	{40, 0.7},
}

const shrinkFloor = 0.6

// EffectiveFontSize 渲染/导出时即算即用的字号，不写回存储的 plan
// 固定面积下文字越长字号只会不变或变小
func EffectiveFontSize(base float64, textLen int, area float64) float64 {
	density := float64(textLen) / maxf(0.1, area)

	factor := shrinkFloor
	for _, step := range shrinkSteps {
		if density <= step.maxDensity {
			factor = step.factor
			break
		}
	}

	return clamp(base*factor, model.MinFontSize, model.MaxFontSize)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
