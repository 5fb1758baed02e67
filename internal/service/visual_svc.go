package service

import (
	"fmt"
	"strings"

	"deck_dev_v1_202608/internal/model"

	"github.com/google/uuid"
)

// ==================== 视觉意图分类 ====================

// VisualService 决定每页想要什么视觉素材，并负责确定性 SVG 生成
type VisualService struct{}

func NewVisualService() *VisualService {
	return &VisualService{}
}

// 关键词表，标题命中即归类
var (
	chartKeywords   = []string{"growth", "revenue", "sales", "trend", "forecast", "metric", "kpi", "market", "quarterly", "数据", "增长", "营收"}
	diagramKeywords = []string{"process", "flow", "workflow", "pipeline", "architecture", "roadmap", "timeline", "journey", "流程", "架构", "路线"}
	photoKeywords   = []string{"team", "about", "story", "culture", "people", "vision", "customer", "团队", "愿景"}
)

// ClassifyIntent 简单的标题/类型启发式，纯函数无外部调用
func (v *VisualService) ClassifyIntent(slide *model.Slide) string {
	switch slide.SlideType {
	case model.SlideTypeTitle:
		return model.VisualPhoto
	case model.SlideTypeQuote, model.SlideTypeClosing:
		return model.VisualNone
	}

	title := strings.ToLower(slide.Title)
	for _, kw := range chartKeywords {
		if strings.Contains(title, kw) {
			return model.VisualChart
		}
	}
	for _, kw := range diagramKeywords {
		if strings.Contains(title, kw) {
			return model.VisualDiagram
		}
	}
	for _, kw := range photoKeywords {
		if strings.Contains(title, kw) {
			return model.VisualPhoto
		}
	}

	// 两栏/对比页放个图标撑排版，普通内容页不强塞视觉
	if slide.SlideType == model.SlideTypeTwoColumn || slide.SlideType == model.SlideTypeComparison {
		return model.VisualIcon
	}
	return model.VisualNone
}

// ==================== 确定性 SVG 生成 ====================

// neutralTheme 素材阶段跑在风格选择之前，主题未定时用中性灰
var neutralTheme = &model.Theme{
	Palette: model.Palette{
		Primary: "#334155", Secondary: "#94A3B8", Background: "#FFFFFF",
		Surface: "#F1F5F9", Text: "#0F172A", Accent: "#64748B",
	},
}

// GenerateSVG 按意图生成 SVG 素材；photo 意图不在这里处理
func (v *VisualService) GenerateSVG(slide *model.Slide, theme *model.Theme) *model.SelectedAsset {
	if theme == nil {
		theme = neutralTheme
	}
	switch slide.VisualIntent {
	case model.VisualChart:
		return v.barChart(slide, theme)
	case model.VisualDiagram:
		return v.flowDiagram(slide, theme)
	case model.VisualIcon:
		return v.accentIcon(theme)
	default:
		return nil
	}
}

// barChart 用 bullet 文字长度画一个确定性的柱状图占位
func (v *VisualService) barChart(slide *model.Slide, theme *model.Theme) *model.SelectedAsset {
	bars := len(slide.Bullets)
	if bars == 0 {
		bars = 4
	}
	if bars > 6 {
		bars = 6
	}

	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 400 300">`)
	sb.WriteString(fmt.Sprintf(`<rect width="400" height="300" fill="%s" rx="8"/>`, theme.Palette.Surface))
	for i := 0; i < bars; i++ {
		// 高度由 bullet 长度决定，无 bullet 时用固定阶梯
		h := 40 + 30*i
		if i < len(slide.Bullets) {
			h = 40 + (len(slide.Bullets[i])*3)%180
		}
		x := 30 + i*60
		color := theme.Palette.Primary
		if i%2 == 1 {
			color = theme.Palette.Accent
		}
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="40" height="%d" fill="%s" rx="4"/>`, x, 260-h, h, color))
	}
	sb.WriteString(`</svg>`)

	return &model.SelectedAsset{
		ID:       uuid.NewString(),
		Kind:     model.VisualChart,
		SVG:      sb.String(),
		Provider: "svg",
	}
}

// flowDiagram 横向流程框图，节点数跟随 bullet 数
func (v *VisualService) flowDiagram(slide *model.Slide, theme *model.Theme) *model.SelectedAsset {
	steps := len(slide.Bullets)
	if steps == 0 {
		steps = 3
	}
	if steps > 5 {
		steps = 5
	}

	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 500 120">`)
	for i := 0; i < steps; i++ {
		x := 10 + i*100
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="30" width="80" height="60" fill="%s" stroke="%s" rx="10"/>`,
			x, theme.Palette.Surface, theme.Palette.Primary))
		if i < steps-1 {
			sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="60" x2="%d" y2="60" stroke="%s" stroke-width="3"/>`,
				x+80, x+100, theme.Palette.Secondary))
		}
	}
	sb.WriteString(`</svg>`)

	return &model.SelectedAsset{
		ID:       uuid.NewString(),
		Kind:     model.VisualDiagram,
		SVG:      sb.String(),
		Provider: "svg",
	}
}

// accentIcon 主题色圆点装饰
func (v *VisualService) accentIcon(theme *model.Theme) *model.SelectedAsset {
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><circle cx="50" cy="50" r="40" fill="%s"/><circle cx="50" cy="50" r="24" fill="%s"/></svg>`,
		theme.Palette.Surface, theme.Palette.Accent)
	return &model.SelectedAsset{
		ID:       uuid.NewString(),
		Kind:     model.VisualIcon,
		SVG:      svg,
		Provider: "svg",
	}
}
