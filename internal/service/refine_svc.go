package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"deck_dev_v1_202608/internal/model"
)

// ==================== 内容润色 ====================

// RefineService 可选润色阶段：改写文字摆脱模板腔
// 失败回退为空 patch 集，不影响生成
type RefineService struct {
	generator TextGenerator
}

func NewRefineService(generator TextGenerator) *RefineService {
	return &RefineService{generator: generator}
}

// refinement AI 输出形状：按页序号给出文本重写
type refinement struct {
	Slides []refinedSlide `json:"slides"`
}

type refinedSlide struct {
	Order        int      `json:"order"`
	Title        string   `json:"title,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
	BodyText     string   `json:"bodyText,omitempty"`
	SpeakerNotes string   `json:"speakerNotes,omitempty"`
}

func refineSchema(maxOrder int) *Schema {
	return &Schema{Fields: []Field{
		{Name: "slides", Kind: FieldArray, Required: true, Items: &Field{
			Kind: FieldObject,
			Fields: []Field{
				{Name: "order", Kind: FieldInt, Required: true, Min: F64(0), Max: F64(float64(maxOrder))},
				{Name: "title", Kind: FieldString},
				{Name: "bullets", Kind: FieldArray, Items: &Field{Kind: FieldString}},
				{Name: "bodyText", Kind: FieldString},
				{Name: "speakerNotes", Kind: FieldString},
			},
		}},
	}}
}

// ShouldRefine 润色触发条件：请求带 tone，或 bullet 数量齐刷刷
func (s *RefineService) ShouldRefine(deck *model.Deck, tone string) bool {
	return tone != "" || uniformBulletCounts(deck.Slides)
}

// Refine 就地改写文字字段；id/order/布局不动
func (s *RefineService) Refine(ctx context.Context, deck *model.Deck, tone string) []string {
	user := refinePrompt(deck, tone)

	result := ValidateContract[refinement]("content refiner", refineSchema(len(deck.Slides)-1), func() (json.RawMessage, error) {
		return s.generator.Generate(ctx, model.StageRefine, deck.ID,
			"You are a presentation copy editor. You only answer with JSON.", user, 4096)
	})

	if !result.OK {
		return []string{"内容润色失败，保留原文: " + result.Err}
	}

	applied := 0
	for _, r := range result.Value.Slides {
		if r.Order < 0 || r.Order >= len(deck.Slides) {
			continue
		}
		slide := deck.Slides[r.Order]
		if r.Title != "" {
			slide.Title = r.Title
		}
		if len(r.Bullets) > 0 {
			slide.Bullets = r.Bullets
		}
		if r.BodyText != "" {
			slide.BodyText = r.BodyText
		}
		if r.SpeakerNotes != "" {
			slide.SpeakerNotes = r.SpeakerNotes
		}
		applied++
	}

	if applied == 0 {
		return []string{"内容润色未返回任何改写"}
	}
	return nil
}

func refinePrompt(deck *model.Deck, tone string) string {
	var sb strings.Builder
	sb.WriteString("Rewrite the slide copy below to feel hand-written: vary bullet counts across slides, vary sentence openings, cut filler.\n")
	if tone != "" {
		fmt.Fprintf(&sb, "Target tone: %s\n", tone)
	}
	sb.WriteString("\nSlides:\n")
	for _, slide := range deck.Slides {
		fmt.Fprintf(&sb, "[%d] (%s) %s\n", slide.Order, slide.SlideType, slide.Title)
		for _, b := range slide.Bullets {
			fmt.Fprintf(&sb, "  - %s\n", b)
		}
		if slide.BodyText != "" {
			fmt.Fprintf(&sb, "  body: %s\n", slide.BodyText)
		}
	}
	sb.WriteString(`
Only include slides you changed. Never change slide order.
Output JSON only: {"slides": [{"order": 1, "title": "...", "bullets": ["..."], "bodyText": "...", "speakerNotes": "..."}]}`)
	return sb.String()
}
