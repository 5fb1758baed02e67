package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"deck_dev_v1_202608/internal/api/dto"
	"deck_dev_v1_202608/internal/model"
	"deck_dev_v1_202608/internal/repository"
)

// ==================== 单页编辑 ====================

// EditService 事后编辑：指令走 AI 出 patch，直改 patch 直接套用
// patch 永远改不了 id / order
type EditService struct {
	generator TextGenerator
	store     *repository.DeckStore
}

func NewEditService(generator TextGenerator, store *repository.DeckStore) *EditService {
	return &EditService{generator: generator, store: store}
}

// 允许 patch 的文本字段
var patchableFields = map[string]bool{
	"title":        true,
	"subtitle":     true,
	"bullets":      true,
	"bodyText":     true,
	"speakerNotes": true,
}

func editSchema() *Schema {
	return &Schema{Fields: []Field{
		{Name: "title", Kind: FieldString},
		{Name: "subtitle", Kind: FieldString},
		{Name: "bullets", Kind: FieldArray, Items: &Field{Kind: FieldString}},
		{Name: "bodyText", Kind: FieldString},
		{Name: "speakerNotes", Kind: FieldString},
	}}
}

// slidePatch AI 输出形状
type slidePatch struct {
	Title        string   `json:"title,omitempty"`
	Subtitle     string   `json:"subtitle,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
	BodyText     string   `json:"bodyText,omitempty"`
	SpeakerNotes string   `json:"speakerNotes,omitempty"`
}

// EditSlide 应用 AI 指令和/或直改 patch，重铺该页布局
func (s *EditService) EditSlide(ctx context.Context, deckID, slideID string, req *dto.SlideEditRequest) (*dto.SlideEditResult, error) {
	deck, err := s.store.Get(deckID)
	if err != nil {
		return nil, err
	}

	var target *model.Slide
	for _, slide := range deck.Slides {
		if slide.ID == slideID {
			target = slide
			break
		}
	}
	if target == nil {
		return nil, repository.ErrSlideNotFound
	}

	var warnings []string
	merged := map[string]interface{}{}

	// 1. 指令 → AI patch
	if req.Instruction != "" {
		aiPatch, warn := s.instructionPatch(ctx, deck, target, req.Instruction)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		for k, v := range aiPatch {
			merged[k] = v
		}
	}

	// 2. 直改 patch 覆盖 AI patch；静默剥掉 id/order
	for k, v := range req.Patch {
		if !patchableFields[k] {
			continue
		}
		merged[k] = v
	}

	if len(merged) == 0 {
		return &dto.SlideEditResult{Success: true, SlideID: slideID, Patch: merged, Warnings: warnings}, nil
	}

	// 3. 套用并重铺布局
	err = s.store.PatchSlide(deckID, slideID, func(slide *model.Slide) {
		applyPatch(slide, merged)
		slide.LayoutPlan = TemplatePlan(slide, deck.Theme)
	})
	if err != nil {
		return nil, err
	}

	return &dto.SlideEditResult{Success: true, SlideID: slideID, Patch: merged, Warnings: warnings}, nil
}

// instructionPatch 指令转 patch；AI 失败返回空 patch + 告警
func (s *EditService) instructionPatch(ctx context.Context, deck *model.Deck, slide *model.Slide, instruction string) (map[string]interface{}, string) {
	user := fmt.Sprintf(`Current slide:
Title: %s
Subtitle: %s
Bullets: %s
Body: %s
Speaker notes: %s

Instruction: %s

Return only the fields that should change.
Output JSON only: {"title": "...", "subtitle": "...", "bullets": ["..."], "bodyText": "...", "speakerNotes": "..."}`,
		slide.Title, slide.Subtitle, strings.Join(slide.Bullets, " | "), slide.BodyText, slide.SpeakerNotes, instruction)

	result := ValidateContract[slidePatch]("slide editor", editSchema(), func() (json.RawMessage, error) {
		return s.generator.Generate(ctx, model.StageEdit, deck.ID,
			"You are a presentation copy editor. You only answer with JSON.", user, 2048)
	})

	if !result.OK {
		return nil, "AI 编辑失败，保留原内容: " + result.Err
	}

	patch := map[string]interface{}{}
	if result.Value.Title != "" {
		patch["title"] = result.Value.Title
	}
	if result.Value.Subtitle != "" {
		patch["subtitle"] = result.Value.Subtitle
	}
	if len(result.Value.Bullets) > 0 {
		patch["bullets"] = result.Value.Bullets
	}
	if result.Value.BodyText != "" {
		patch["bodyText"] = result.Value.BodyText
	}
	if result.Value.SpeakerNotes != "" {
		patch["speakerNotes"] = result.Value.SpeakerNotes
	}
	return patch, ""
}

// applyPatch 把 patch 写进 Slide；id/order 不在可写集合里
func applyPatch(slide *model.Slide, patch map[string]interface{}) {
	for k, v := range patch {
		switch k {
		case "title":
			if s, ok := v.(string); ok {
				slide.Title = s
			}
		case "subtitle":
			if s, ok := v.(string); ok {
				slide.Subtitle = s
			}
		case "bodyText":
			if s, ok := v.(string); ok {
				slide.BodyText = s
			}
		case "speakerNotes":
			if s, ok := v.(string); ok {
				slide.SpeakerNotes = s
			}
		case "bullets":
			slide.Bullets = toStringSlice(v)
		}
	}
}

func toStringSlice(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
