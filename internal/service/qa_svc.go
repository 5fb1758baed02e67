package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"deck_dev_v1_202608/internal/model"
)

// ==================== 配置 ====================

// QaConfig 质检阈值与扣分
// 数值沿用既有调优结果，来源未给推导，按配置维护而非推导常量
type QaConfig struct {
	MinSlideCount        int     // 低于该页数直接 fail
	SlideCountPenalty    int     // -30
	UniformBulletPenalty int     // -8
	PlaceholderPenalty   int     // 每页 -12
	DensityFailThreshold float64 // > 220 fail
	DensityWarnThreshold float64 // (150,220] warn
	DensityFailPenalty   int     // -15
	DensityWarnPenalty   int     // -6
	NoPlanDensityDivisor float64 // 无布局时 字符数/40
	MinSpeakerNotesLen   int     // 非标题页讲稿下限
	SpeakerNotesPenalty  int     // -2
	PassScore            int     // >= 70 才算过
}

// DefaultQaConfig 默认阈值
func DefaultQaConfig() *QaConfig {
	return &QaConfig{
		MinSlideCount:        3,
		SlideCountPenalty:    30,
		UniformBulletPenalty: 8,
		PlaceholderPenalty:   12,
		DensityFailThreshold: 220,
		DensityWarnThreshold: 150,
		DensityFailPenalty:   15,
		DensityWarnPenalty:   6,
		NoPlanDensityDivisor: 40,
		MinSpeakerNotesLen:   20,
		SpeakerNotesPenalty:  2,
		PassScore:            70,
	}
}

// 脚手架残留短语，命中即 fail
var placeholderPhrases = []string{
	"lorem ipsum",
	"your text here",
	"insert text",
	"placeholder",
	"[todo]",
	"tbd",
	"此处填写",
	"待补充",
}

// ==================== 服务 ====================

// QaService 确定性质检：不碰任何生成式接口，无副作用
type QaService struct {
	Config *QaConfig
}

func NewQaService(cfg *QaConfig) *QaService {
	if cfg == nil {
		cfg = DefaultQaConfig()
	}
	return &QaService{Config: cfg}
}

// Evaluate 对组装完的 Deck 打分
// 分数从 100 起扣并夹到 [0,100]；pass ⇔ 无 fail 且分数达标
func (s *QaService) Evaluate(deck *model.Deck) *model.QaReport {
	cfg := s.Config
	report := &model.QaReport{Score: 100, Issues: []model.QaIssue{}}

	// 1. 页数
	if len(deck.Slides) < cfg.MinSlideCount {
		report.Issues = append(report.Issues, model.QaIssue{
			Level:   model.QaLevelFail,
			Message: fmt.Sprintf("幻灯片数量 %d 少于下限 %d", len(deck.Slides), cfg.MinSlideCount),
		})
		report.Score -= cfg.SlideCountPenalty
	}

	// 2. bullet 数量齐刷刷（模板味信号）
	if uniformBulletCounts(deck.Slides) {
		report.Issues = append(report.Issues, model.QaIssue{
			Level:   model.QaLevelWarn,
			Message: "所有含 bullet 的页数量完全一致，内容缺少变化",
		})
		report.Score -= cfg.UniformBulletPenalty
	}

	// 3. 逐页检查
	for _, slide := range deck.Slides {
		// 脚手架残留
		if phrase := findPlaceholder(slide); phrase != "" {
			report.Issues = append(report.Issues, model.QaIssue{
				Level:   model.QaLevelFail,
				SlideID: slide.ID,
				Message: fmt.Sprintf("第 %d 页含占位残留文本 %q", slide.Order+1, phrase),
			})
			report.Score -= cfg.PlaceholderPenalty
		}

		// 密度
		density := s.slideDensity(slide)
		switch {
		case density > cfg.DensityFailThreshold:
			report.Issues = append(report.Issues, model.QaIssue{
				Level:   model.QaLevelFail,
				SlideID: slide.ID,
				Message: fmt.Sprintf("第 %d 页过度拥挤 (密度 %.0f)", slide.Order+1, density),
			})
			report.Score -= cfg.DensityFailPenalty
		case density > cfg.DensityWarnThreshold:
			report.Issues = append(report.Issues, model.QaIssue{
				Level:   model.QaLevelWarn,
				SlideID: slide.ID,
				Message: fmt.Sprintf("第 %d 页偏拥挤 (密度 %.0f)", slide.Order+1, density),
			})
			report.Score -= cfg.DensityWarnPenalty
		}

		// 讲稿
		if slide.SlideType != model.SlideTypeTitle && utf8.RuneCountInString(slide.SpeakerNotes) < cfg.MinSpeakerNotesLen {
			report.Issues = append(report.Issues, model.QaIssue{
				Level:   model.QaLevelWarn,
				SlideID: slide.ID,
				Message: fmt.Sprintf("第 %d 页讲稿缺失或过短", slide.Order+1),
			})
			report.Score -= cfg.SpeakerNotesPenalty
		}
	}

	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}
	report.Pass = !report.HasFail() && report.Score >= cfg.PassScore

	return report
}

// ==================== 检查项 ====================

// slideDensity 可见字符数 / 文字 Box 总面积；无布局时退化为 字符数/除数
func (s *QaService) slideDensity(slide *model.Slide) float64 {
	chars := visibleChars(slide)

	if slide.LayoutPlan == nil || len(slide.LayoutPlan.Boxes) == 0 {
		return float64(chars) / s.Config.NoPlanDensityDivisor
	}

	var textArea float64
	for _, box := range slide.LayoutPlan.Boxes {
		if model.TextBoxKinds[box.Kind] {
			textArea += box.Area()
		}
	}
	if textArea <= 0 {
		return float64(chars) / s.Config.NoPlanDensityDivisor
	}
	return float64(chars) / textArea
}

// visibleChars 标题+副标题+bullet+正文的总字符数（讲稿不上屏，不计入）
// 按 rune 计数，中文内容不能按字节算密度
func visibleChars(slide *model.Slide) int {
	total := utf8.RuneCountInString(slide.Title) +
		utf8.RuneCountInString(slide.Subtitle) +
		utf8.RuneCountInString(slide.BodyText)
	for _, b := range slide.Bullets {
		total += utf8.RuneCountInString(b)
	}
	return total
}

// uniformBulletCounts 至少两页含 bullet 且数量全部相同
func uniformBulletCounts(slides []*model.Slide) bool {
	count := -1
	seen := 0
	for _, slide := range slides {
		if len(slide.Bullets) == 0 {
			continue
		}
		seen++
		if count == -1 {
			count = len(slide.Bullets)
		} else if count != len(slide.Bullets) {
			return false
		}
	}
	return seen >= 2
}

// findPlaceholder 返回命中的占位短语，未命中返回空串
func findPlaceholder(slide *model.Slide) string {
	var sb strings.Builder
	sb.WriteString(slide.Title)
	sb.WriteString("\n")
	sb.WriteString(slide.Subtitle)
	sb.WriteString("\n")
	sb.WriteString(slide.BodyText)
	for _, b := range slide.Bullets {
		sb.WriteString("\n")
		sb.WriteString(b)
	}
	text := strings.ToLower(sb.String())

	for _, phrase := range placeholderPhrases {
		if strings.Contains(text, phrase) {
			return phrase
		}
	}
	return ""
}
