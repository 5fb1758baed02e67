package service

import (
	"fmt"
	"unicode/utf8"

	"deck_dev_v1_202608/internal/model"

	"github.com/google/uuid"
)

// ==================== 配置 ====================

// RepairConfig 自动修复阈值
type RepairConfig struct {
	MaxBullets     int // >= 9 条触发拆页
	MaxBulletChars int // bullet 合计 > 520 字符触发拆页
	SplitMin       int // 拆页后首页 bullet 下限
	SplitMax       int // 拆页后首页 bullet 上限
}

// DefaultRepairConfig 默认阈值
func DefaultRepairConfig() *RepairConfig {
	return &RepairConfig{
		MaxBullets:     9,
		MaxBulletChars: 520,
		SplitMin:       3,
		SplitMax:       5,
	}
}

// ==================== 服务 ====================

// RepairService 确定性修复：不发起任何生成式调用
// 两个独立修复段按序执行，每段之后重算 QA；对已通过的 Deck 重复执行是空操作
type RepairService struct {
	Config *RepairConfig
	qa     *QaService
}

func NewRepairService(cfg *RepairConfig, qa *QaService) *RepairService {
	if cfg == nil {
		cfg = DefaultRepairConfig()
	}
	return &RepairService{Config: cfg, qa: qa}
}

// Repair 对 QA 报告指出的问题做尽力修复，返回修复后的报告和动作记录
// 不保证收敛：修复后的报告无论是否通过都被接受
func (s *RepairService) Repair(deck *model.Deck, report *model.QaReport) (*model.QaReport, []string) {
	var actions []string

	// ---- 第一段：失败页回落模板布局 ----
	retemplated := s.applyTemplates(deck, report)
	if retemplated > 0 {
		actions = append(actions, fmt.Sprintf("对 %d 页重新应用模板布局", retemplated))
	}
	report = s.qa.Evaluate(deck)

	// ---- 第二段：过载页拆分 ----
	split := s.splitOvercrowded(deck)
	if split > 0 {
		actions = append(actions, fmt.Sprintf("拆分了 %d 个过载页", split))
	}
	report = s.qa.Evaluate(deck)

	return report, actions
}

// ==================== 第一段：模板回落 ====================

// applyTemplates 对出现在 fail 级布局/密度问题里的页重铺模板
func (s *RepairService) applyTemplates(deck *model.Deck, report *model.QaReport) int {
	failing := make(map[string]bool)
	for _, issue := range report.Issues {
		if issue.Level == model.QaLevelFail && issue.SlideID != "" {
			failing[issue.SlideID] = true
		}
	}

	count := 0
	for _, slide := range deck.Slides {
		if !failing[slide.ID] {
			continue
		}
		// 只处理布局/密度类失败；占位文本类失败模板救不了
		if !s.layoutProblem(slide) {
			continue
		}
		slide.LayoutPlan = TemplatePlan(slide, deck.Theme)
		count++
	}
	return count
}

// layoutProblem 密度超标、缺布局或布局越界都算布局问题
func (s *RepairService) layoutProblem(slide *model.Slide) bool {
	if slide.LayoutPlan == nil {
		return true
	}
	for _, box := range slide.LayoutPlan.Boxes {
		if !box.InBounds(slide.LayoutPlan.SlideW, slide.LayoutPlan.SlideH) {
			return true
		}
	}
	return s.qa.slideDensity(slide) > s.qa.Config.DensityFailThreshold
}

// ==================== 第二段：过载拆分 ====================

// splitOvercrowded 拆分 bullet 过多/过长的页并重排 order
func (s *RepairService) splitOvercrowded(deck *model.Deck) int {
	cfg := s.Config
	out := make([]*model.Slide, 0, len(deck.Slides))
	split := 0

	for _, slide := range deck.Slides {
		if !s.overcrowded(slide) {
			out = append(out, slide)
			continue
		}

		// 首页留一半（四舍五入，夹到 [SplitMin,SplitMax]），余下给续页
		first := (len(slide.Bullets) + 1) / 2
		if first < cfg.SplitMin {
			first = cfg.SplitMin
		}
		if first > cfg.SplitMax {
			first = cfg.SplitMax
		}
		if first >= len(slide.Bullets) {
			out = append(out, slide)
			continue
		}

		rest := slide.Bullets[first:]
		slide.Bullets = slide.Bullets[:first]
		slide.LayoutPlan = TemplatePlan(slide, deck.Theme)

		cont := &model.Slide{
			ID:           uuid.NewString(),
			SlideType:    slide.SlideType,
			Title:        slide.Title + " (cont.)",
			Bullets:      rest,
			VisualIntent: model.VisualNone,
			// 讲稿清空，后续如需再生成
			SpeakerNotes: "",
		}
		cont.LayoutPlan = TemplatePlan(cont, deck.Theme)

		out = append(out, slide, cont)
		split++
	}

	// order 重排为紧密的 0..N-1
	for i, slide := range out {
		slide.Order = i
	}
	deck.Slides = out
	return split
}

// overcrowded bullet 条数或合计字符数（按 rune）过线
func (s *RepairService) overcrowded(slide *model.Slide) bool {
	if len(slide.Bullets) >= s.Config.MaxBullets {
		return true
	}
	total := 0
	for _, b := range slide.Bullets {
		total += utf8.RuneCountInString(b)
	}
	return total > s.Config.MaxBulletChars
}
