package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"deck_dev_v1_202608/internal/model"

	"github.com/google/uuid"
)

// ==================== 大纲结构 ====================

// Outline 大纲阶段产物：标题 + 有序页骨架
type Outline struct {
	Title  string          `json:"title"`
	Slides []*OutlineSlide `json:"slides"`
}

// OutlineSlide 单页骨架
type OutlineSlide struct {
	SlideType    string   `json:"slideType"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
	BodyText     string   `json:"bodyText,omitempty"`
	SpeakerNotes string   `json:"speakerNotes,omitempty"`
}

var slideTypes = []string{
	model.SlideTypeTitle, model.SlideTypeSection, model.SlideTypeContent,
	model.SlideTypeTwoColumn, model.SlideTypeComparison, model.SlideTypeQuote,
	model.SlideTypeClosing,
}

func outlineSchema() *Schema {
	return &Schema{Fields: []Field{
		{Name: "title", Kind: FieldString, Required: true},
		{Name: "slides", Kind: FieldArray, Required: true, Items: &Field{
			Kind: FieldObject,
			Fields: []Field{
				{Name: "slideType", Kind: FieldString, Required: true, Enum: slideTypes},
				{Name: "title", Kind: FieldString, Required: true},
				{Name: "subtitle", Kind: FieldString},
				{Name: "bullets", Kind: FieldArray, Items: &Field{Kind: FieldString}},
				{Name: "bodyText", Kind: FieldString},
				{Name: "speakerNotes", Kind: FieldString},
			},
		}},
	}}
}

// ==================== 服务 ====================

type OutlineService struct {
	generator TextGenerator
}

func NewOutlineService(generator TextGenerator) *OutlineService {
	return &OutlineService{generator: generator}
}

// BuildOutline 生成大纲；AI 失败时落到确定性骨架，绝不让整次生成失败
func (s *OutlineService) BuildOutline(ctx context.Context, deckID, prompt, audience, tone string, slideCount int) (*Outline, []string) {
	countHint := "5-8 slides"
	if slideCount > 0 {
		countHint = fmt.Sprintf("exactly %d slides", slideCount)
	}

	user := fmt.Sprintf(`Create a presentation outline about: %s

Requirements:
- %s
- First slide must be slideType "title", last slide slideType "closing"
- Content slides carry 3-6 concise bullets each
- Every non-title slide gets speakerNotes of at least two sentences
- Vary bullet counts between slides, avoid a uniform rhythm`, prompt, countHint)
	if audience != "" {
		user += "\n- Target audience: " + audience
	}
	if tone != "" {
		user += "\n- Tone: " + tone
	}
	user += `

Output JSON only:
{"title": "...", "slides": [{"slideType": "title|section|content|two_column|comparison|quote|closing", "title": "...", "subtitle": "...", "bullets": ["..."], "bodyText": "...", "speakerNotes": "..."}]}`

	result := ValidateContract[Outline]("outline builder", outlineSchema(), func() (json.RawMessage, error) {
		return s.generator.Generate(ctx, model.StageOutline, deckID,
			"You are a presentation strategist. You only answer with JSON.", user, 4096)
	})

	var warnings []string
	outline := result.Value
	if !result.OK || len(outline.Slides) == 0 {
		warnings = append(warnings, "大纲生成失败，使用确定性骨架: "+result.Err)
		fallback := fallbackOutline(prompt, slideCount)
		return fallback, warnings
	}

	// 页数约束是硬请求参数，多退少补
	if slideCount > 0 && len(outline.Slides) != slideCount {
		warnings = append(warnings, fmt.Sprintf("大纲返回 %d 页，调整为请求的 %d 页", len(outline.Slides), slideCount))
		outline.Slides = resizeOutline(outline.Slides, slideCount, prompt)
	}

	return &outline, warnings
}

// ==================== 确定性回退 ====================

// fallbackOutline AI 不可用时的骨架大纲
func fallbackOutline(prompt string, slideCount int) *Outline {
	if slideCount <= 0 {
		slideCount = 5
	}

	slides := make([]*OutlineSlide, 0, slideCount)
	slides = append(slides, &OutlineSlide{
		SlideType: model.SlideTypeTitle,
		Title:     prompt,
		Subtitle:  "Overview",
	})
	for i := 1; i < slideCount-1; i++ {
		slides = append(slides, &OutlineSlide{
			SlideType:    model.SlideTypeContent,
			Title:        fmt.Sprintf("%s — Part %d", prompt, i),
			Bullets:      []string{"Key point", "Supporting detail", "Implication"},
			SpeakerNotes: "Walk the audience through this section. Expand each bullet with a concrete example.",
		})
	}
	if slideCount > 1 {
		slides = append(slides, &OutlineSlide{
			SlideType:    model.SlideTypeClosing,
			Title:        "Summary & Next Steps",
			Bullets:      []string{"Recap", "Decision needed", "Follow-up"},
			SpeakerNotes: "Close with the main takeaway and the concrete ask. Thank the audience.",
		})
	}

	return &Outline{Title: prompt, Slides: slides}
}

// resizeOutline 截断或补页到目标数量
func resizeOutline(slides []*OutlineSlide, target int, prompt string) []*OutlineSlide {
	if len(slides) > target {
		return slides[:target]
	}
	for len(slides) < target {
		slides = append(slides, &OutlineSlide{
			SlideType:    model.SlideTypeContent,
			Title:        fmt.Sprintf("%s — Additional Notes", prompt),
			Bullets:      []string{"Key point", "Supporting detail", "Implication"},
			SpeakerNotes: "Expand on the remaining material for this topic in your own words.",
		})
	}
	return slides
}

// ==================== Deck 组装 ====================

// MaterializeDeck 把大纲落成 Deck，分配不可变的 id/order
// deckID 由调用方预先生成，保证大纲阶段的调用日志与成品 Deck 同源
func MaterializeDeck(deckID string, outline *Outline, theme *model.Theme, decoration string) *model.Deck {
	if deckID == "" {
		deckID = uuid.NewString()
	}
	now := time.Now().UTC()
	deck := &model.Deck{
		ID:         deckID,
		Title:      outline.Title,
		Theme:      theme,
		Decoration: decoration,
		Metadata:   model.DeckMetadata{CreatedAt: now, UpdatedAt: now, Version: 1},
	}
	for i, os := range outline.Slides {
		deck.Slides = append(deck.Slides, &model.Slide{
			ID:           uuid.NewString(),
			Order:        i,
			SlideType:    os.SlideType,
			Title:        os.Title,
			Subtitle:     os.Subtitle,
			Bullets:      os.Bullets,
			BodyText:     os.BodyText,
			SpeakerNotes: os.SpeakerNotes,
		})
	}
	return deck
}
