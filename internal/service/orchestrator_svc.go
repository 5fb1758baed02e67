package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"deck_dev_v1_202608/internal/api/dto"
	"deck_dev_v1_202608/internal/model"
	"deck_dev_v1_202608/internal/repository"

	"github.com/google/uuid"
)

// ==================== 编排器 ====================

// OrchestratorService 固定阶段序列的生成流水线
// outline → visual_intent → assets → style → content_refine(条件) → layout → qa(+修复) → done
// 各阶段可恢复失败转成 Deck 级告警并用回退值续跑；只有终检失败才返回错误
type OrchestratorService struct {
	outline *OutlineService
	visual  *VisualService
	assets  *AssetService
	style   *StyleService
	refine  *RefineService // 可选，nil 时跳过润色
	layout  *LayoutService
	qa      *QaService
	repair  *RepairService
	store   *repository.DeckStore
}

// NewOrchestratorService 创建编排器
func NewOrchestratorService(
	outline *OutlineService,
	visual *VisualService,
	assets *AssetService,
	style *StyleService,
	refine *RefineService,
	layout *LayoutService,
	qa *QaService,
	repair *RepairService,
	store *repository.DeckStore,
) *OrchestratorService {
	return &OrchestratorService{
		outline: outline,
		visual:  visual,
		assets:  assets,
		style:   style,
		refine:  refine,
		layout:  layout,
		qa:      qa,
		repair:  repair,
		store:   store,
	}
}

// 修复循环的额外 QA 轮数上限
const maxRepairPasses = 2

// ==================== 事件 ====================

// EventSink 单向进度推送；发送永不阻塞，消费端断开丢事件不丢生成
type EventSink chan<- dto.StreamEvent

func emit(sink EventSink, ev dto.StreamEvent) {
	if sink == nil {
		return
	}
	select {
	case sink <- ev:
	default:
		// 缓冲满 = 消费端跟不上，按丢弃处理
	}
}

// ==================== 生成 ====================

// Generate 执行一次完整生成
// 除终检失败外总是返回 success=true 的尽力结果 + 告警列表
func (s *OrchestratorService) Generate(ctx context.Context, req *dto.GenerateDeckRequest, sink EventSink) *dto.GenerateDeckResult {
	var warnings []string

	// Deck ID 先于大纲阶段生成，保证所有阶段的调用日志都落到同一个 deck_id
	deckID := uuid.NewString()

	// ---- outline ----
	var outline *Outline
	s.runStage(model.StageOutline, sink, &warnings, func() []string {
		o, warns := s.outline.BuildOutline(ctx, deckID, req.Prompt, req.TargetAudience, req.Tone, req.SlideCount)
		outline = o
		return warns
	})
	if outline == nil {
		// BuildOutline 自带回退，到不了这里；防御性兜底
		outline = fallbackOutline(req.Prompt, req.SlideCount)
	}
	deck := MaterializeDeck(deckID, outline, nil, "")
	emit(sink, dto.StreamEvent{Event: dto.EventArtifact, Stage: model.StageOutline, Name: "outline", Data: outline})

	// ---- visual_intent ----
	s.runStage(model.StageVisualIntent, sink, &warnings, func() []string {
		for _, slide := range deck.Slides {
			slide.VisualIntent = s.visual.ClassifyIntent(slide)
		}
		return nil
	})

	// ---- assets ----
	s.runStage(model.StageAssets, sink, &warnings, func() []string {
		return s.assets.ResolveAssets(ctx, deck)
	})

	// ---- style ----
	var recommended string
	s.runStage(model.StageStyle, sink, &warnings, func() []string {
		theme, decoration, warns := s.style.SelectTheme(ctx, deck.ID, req.Prompt, req.DesignPrompt, req.Theme)
		deck.Theme = theme
		deck.Decoration = decoration
		recommended = theme.ID
		return warns
	})
	emit(sink, dto.StreamEvent{Event: dto.EventArtifact, Stage: model.StageStyle, Name: "theme", Data: deck.Theme})

	// ---- content_refine（条件执行）----
	if s.refine != nil && s.refine.ShouldRefine(deck, req.Tone) {
		s.runStage(model.StageRefine, sink, &warnings, func() []string {
			return s.refine.Refine(ctx, deck, req.Tone)
		})
	}

	// ---- layout ----
	s.runStage(model.StageLayout, sink, &warnings, func() []string {
		return s.layout.PlanLayouts(ctx, deck)
	})
	emit(sink, dto.StreamEvent{Event: dto.EventArtifact, Stage: model.StageLayout, Name: "layout_plans", Data: len(deck.Slides)})

	// ---- qa + 修复循环 ----
	var report *model.QaReport
	s.runStage(model.StageQA, sink, &warnings, func() []string {
		var stageWarns []string
		report = s.qa.Evaluate(deck)
		for pass := 0; !report.Pass && pass < maxRepairPasses; pass++ {
			repaired, actions := s.repair.Repair(deck, report)
			report = repaired
			for _, act := range actions {
				stageWarns = append(stageWarns, "自动修复: "+act)
			}
			if len(actions) == 0 {
				// 修不动了，接受现状
				break
			}
		}
		return stageWarns
	})
	emit(sink, dto.StreamEvent{Event: dto.EventArtifact, Stage: model.StageQA, Name: "qa_report", Data: report})

	// ---- 终检 ----
	deck.Metadata.UpdatedAt = time.Now().UTC()
	if err := validateDeck(deck); err != nil {
		// 每个阶段都过了校验还组装出坏 Deck，属于校验器缺陷，不掩盖
		log.Printf("[Orchestrator] 终检失败: %v", err)
		emit(sink, dto.StreamEvent{Event: dto.EventError, Stage: model.StageDone, Message: err.Error()})
		return &dto.GenerateDeckResult{Success: false, Error: err.Error(), Warnings: warnings}
	}

	s.store.Put(deck)

	emit(sink, dto.StreamEvent{Event: dto.EventDone, Stage: model.StageDone, Data: dto.DoneEvent{
		DeckID:   deck.ID,
		QA:       report,
		Warnings: warnings,
	}})

	return &dto.GenerateDeckResult{
		Success:            true,
		Deck:               deck,
		StylePresets:       s.style.Presets(),
		RecommendedStyleID: recommended,
		QA:                 report,
		Warnings:           warnings,
	}
}

// runStage 阶段包装：start/end 事件 + 告警收集 + panic 兜底
func (s *OrchestratorService) runStage(stage string, sink EventSink, warnings *[]string, fn func() []string) {
	emit(sink, dto.StreamEvent{Event: dto.EventStageStart, Stage: stage})

	stageWarns := func() (warns []string) {
		defer func() {
			if r := recover(); r != nil {
				warns = append(warns, fmt.Sprintf("阶段 %s 异常恢复: %v", stage, r))
			}
		}()
		return fn()
	}()

	for _, w := range stageWarns {
		*warnings = append(*warnings, w)
		emit(sink, dto.StreamEvent{Event: dto.EventWarning, Stage: stage, Message: w})
	}

	emit(sink, dto.StreamEvent{Event: dto.EventStageEnd, Stage: stage})
}

// ==================== 终检 ====================

func deckSchema() *Schema {
	paletteFields := []Field{
		{Name: "primary", Kind: FieldString, Required: true},
		{Name: "secondary", Kind: FieldString, Required: true},
		{Name: "background", Kind: FieldString, Required: true},
		{Name: "surface", Kind: FieldString, Required: true},
		{Name: "text", Kind: FieldString, Required: true},
		{Name: "accent", Kind: FieldString, Required: true},
	}
	return &Schema{Fields: []Field{
		{Name: "id", Kind: FieldString, Required: true},
		{Name: "title", Kind: FieldString, Required: true},
		{Name: "theme", Kind: FieldObject, Required: true, Fields: []Field{
			{Name: "id", Kind: FieldString, Required: true},
			{Name: "name", Kind: FieldString, Required: true},
			{Name: "palette", Kind: FieldObject, Required: true, Fields: paletteFields},
			{Name: "headingFont", Kind: FieldString, Required: true},
			{Name: "bodyFont", Kind: FieldString, Required: true},
		}},
		{Name: "slides", Kind: FieldArray, Required: true, Items: &Field{
			Kind: FieldObject,
			Fields: []Field{
				{Name: "id", Kind: FieldString, Required: true},
				{Name: "order", Kind: FieldInt, Required: true, Min: F64(0)},
				{Name: "slideType", Kind: FieldString, Required: true, Enum: slideTypes},
				{Name: "title", Kind: FieldString, Required: true},
			},
		}},
	}}
}

// validateDeck 组装后的 Deck 终检：schema + order 致密性 + 布局边界
func validateDeck(deck *model.Deck) error {
	raw, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("deck 序列化失败: %v", err)
	}

	result := ParseContract[struct{}]("deck validator", deckSchema(), raw)
	if !result.OK {
		return fmt.Errorf("deck 终检失败: %v", result.Issues)
	}

	for i, slide := range deck.Slides {
		if slide.Order != i {
			return fmt.Errorf("deck 终检失败: 第 %d 页 order=%d 不致密", i, slide.Order)
		}
		if slide.LayoutPlan == nil {
			continue
		}
		for _, box := range slide.LayoutPlan.Boxes {
			if !box.InBounds(slide.LayoutPlan.SlideW, slide.LayoutPlan.SlideH) {
				return fmt.Errorf("deck 终检失败: 第 %d 页 box %s 越界", i, box.ID)
			}
		}
	}
	return nil
}
