package service

import (
	"strings"

	"deck_dev_v1_202608/internal/model"

	"github.com/google/uuid"
)

// ==================== 确定性布局模板 ====================

// 模板统一边距与列距，所有坐标按固定算式给出
// 每个模板自身就满足边界不变式，不依赖 Sanitizer 兜底
const (
	tplMargin = 0.8
	tplGutter = 0.4

	tplW = model.SlideWidth  // 13.333
	tplH = model.SlideHeight // 7.5
)

// TemplatePlan 按页类型（含关键词匹配）选择手写模板
func TemplatePlan(slide *model.Slide, theme *model.Theme) *model.LayoutPlan {
	headingFont, bodyFont := "Arial", "Arial"
	textColor, surface := "#1F2937", "#F3F4F6"
	if theme != nil {
		headingFont, bodyFont = theme.HeadingFont, theme.BodyFont
		textColor, surface = theme.Palette.Text, theme.Palette.Surface
	}

	t := templates{
		headingFont: headingFont,
		bodyFont:    bodyFont,
		textColor:   textColor,
		surface:     surface,
	}

	var boxes []*model.Box
	switch slide.SlideType {
	case model.SlideTypeTitle:
		boxes = t.titleSlide(slide)
	case model.SlideTypeSection:
		boxes = t.sectionSlide(slide)
	case model.SlideTypeQuote:
		boxes = t.quoteSlide(slide)
	case model.SlideTypeTwoColumn, model.SlideTypeComparison:
		boxes = t.twoColumnSlide(slide)
	default:
		title := strings.ToLower(slide.Title)
		switch {
		case strings.Contains(title, "agenda") || strings.Contains(title, "summary") ||
			strings.Contains(title, "议程") || strings.Contains(title, "总结"):
			boxes = t.agendaSlide(slide)
		case strings.Contains(title, "timeline") || strings.Contains(title, "roadmap") ||
			strings.Contains(title, "时间线") || strings.Contains(title, "路线"):
			boxes = t.timelineSlide(slide)
		default:
			boxes = t.defaultSlide(slide)
		}
	}

	return &model.LayoutPlan{
		Version: model.LayoutPlanVersion,
		SlideW:  tplW,
		SlideH:  tplH,
		Boxes:   boxes,
	}
}

// ==================== 模板实现 ====================

type templates struct {
	headingFont string
	bodyFont    string
	textColor   string
	surface     string
}

func (t templates) box(kind string, x, y, w, h float64) *model.Box {
	b := &model.Box{
		ID:    uuid.NewString(),
		Kind:  kind,
		X:     x,
		Y:     y,
		W:     w,
		H:     h,
		Color: t.textColor,
	}
	switch kind {
	case model.BoxKindTitle:
		b.FontFace, b.FontSize, b.Align = t.headingFont, 32, "left"
	case model.BoxKindSubtitle:
		b.FontFace, b.FontSize, b.Align = t.bodyFont, 20, "left"
	case model.BoxKindBullets, model.BoxKindBody:
		b.FontFace, b.FontSize, b.Align, b.VAlign = t.bodyFont, 18, "left", "top"
	case model.BoxKindShape:
		b.Fill, b.Radius, b.Color = t.surface, 0.12, ""
	}
	return b
}

// titleSlide 居中大标题
func (t templates) titleSlide(slide *model.Slide) []*model.Box {
	title := t.box(model.BoxKindTitle, tplMargin, 2.6, tplW-2*tplMargin, 1.6)
	title.FontSize, title.Align = 44, "center"

	subtitle := t.box(model.BoxKindSubtitle, tplMargin, 4.4, tplW-2*tplMargin, 0.9)
	subtitle.Align = "center"

	boxes := []*model.Box{title, subtitle}
	if slide.HasImage() {
		// 顶部横幅图
		boxes = append(boxes, t.box(model.BoxKindImage, tplMargin, 0.5, tplW-2*tplMargin, 1.8))
	}
	return boxes
}

// sectionSlide 章节分隔页
func (t templates) sectionSlide(slide *model.Slide) []*model.Box {
	bar := t.box(model.BoxKindShape, 0, 3.0, 0.25, 1.5)
	title := t.box(model.BoxKindTitle, tplMargin, 3.1, tplW-2*tplMargin, 1.3)
	title.FontSize = 38
	return []*model.Box{bar, title}
}

// quoteSlide 引用页，正文居中
func (t templates) quoteSlide(slide *model.Slide) []*model.Box {
	card := t.box(model.BoxKindShape, 1.6, 1.8, tplW-3.2, 3.9)
	body := t.box(model.BoxKindBody, 2.0, 2.2, tplW-4.0, 3.1)
	body.FontSize, body.Align, body.VAlign = 24, "center", "middle"
	attribution := t.box(model.BoxKindSubtitle, 2.0, 5.9, tplW-4.0, 0.7)
	attribution.Align = "center"
	return []*model.Box{card, body, attribution}
}

// twoColumnSlide 左右两栏 bullets
func (t templates) twoColumnSlide(slide *model.Slide) []*model.Box {
	colW := (tplW - 2*tplMargin - tplGutter) / 2

	title := t.box(model.BoxKindTitle, tplMargin, 0.5, tplW-2*tplMargin, 1.1)
	leftCard := t.box(model.BoxKindShape, tplMargin, 1.9, colW, 4.9)
	rightCard := t.box(model.BoxKindShape, tplMargin+colW+tplGutter, 1.9, colW, 4.9)
	left := t.box(model.BoxKindBullets, tplMargin+0.3, 2.2, colW-0.6, 4.3)
	right := t.box(model.BoxKindBullets, tplMargin+colW+tplGutter+0.3, 2.2, colW-0.6, 4.3)

	return []*model.Box{title, leftCard, rightCard, left, right}
}

// agendaSlide 议程/总结：窄内容列 + 留白
func (t templates) agendaSlide(slide *model.Slide) []*model.Box {
	title := t.box(model.BoxKindTitle, tplMargin, 0.5, tplW-2*tplMargin, 1.1)
	card := t.box(model.BoxKindShape, tplMargin, 1.9, 7.6, 5.0)
	bullets := t.box(model.BoxKindBullets, tplMargin+0.4, 2.3, 6.8, 4.2)

	boxes := []*model.Box{title, card, bullets}
	if slide.HasImage() {
		boxes = append(boxes, t.box(model.BoxKindImage, 9.0, 1.9, 3.5, 5.0))
	}
	return boxes
}

// timelineSlide 横向时间线：内容带压到下半区
func (t templates) timelineSlide(slide *model.Slide) []*model.Box {
	title := t.box(model.BoxKindTitle, tplMargin, 0.5, tplW-2*tplMargin, 1.1)
	rail := t.box(model.BoxKindShape, tplMargin, 3.5, tplW-2*tplMargin, 0.12)
	bullets := t.box(model.BoxKindBullets, tplMargin, 4.0, tplW-2*tplMargin, 2.9)
	return []*model.Box{title, rail, bullets}
}

// defaultSlide 标准内容页
func (t templates) defaultSlide(slide *model.Slide) []*model.Box {
	title := t.box(model.BoxKindTitle, tplMargin, 0.5, tplW-2*tplMargin, 1.1)

	contentW := tplW - 2*tplMargin
	var boxes []*model.Box
	if slide.HasImage() {
		contentW = 7.2
		boxes = append(boxes, t.box(model.BoxKindImage, tplMargin+contentW+tplGutter, 1.9, tplW-2*tplMargin-contentW-tplGutter, 5.0))
	}

	// 密集文字背后垫一块卡片保证对比度
	card := t.box(model.BoxKindShape, tplMargin, 1.9, contentW, 5.0)

	kind := model.BoxKindBullets
	if len(slide.Bullets) == 0 && slide.BodyText != "" {
		kind = model.BoxKindBody
	}
	content := t.box(kind, tplMargin+0.3, 2.2, contentW-0.6, 4.4)

	boxes = append([]*model.Box{title, card, content}, boxes...)
	return boxes
}
