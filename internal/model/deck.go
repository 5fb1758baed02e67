package model

import "time"

// ==================== 画布常量 ====================

// 画布固定为 16:9，单位英寸
const (
	SlideWidth  = 13.333
	SlideHeight = 7.5

	// Box 最小尺寸，小于该值视为退化
	MinBoxSize = 0.1

	// 字号边界
	MinFontSize = 10
	MaxFontSize = 54

	// LayoutPlan 当前版本号
	LayoutPlanVersion = "1.0"
)

// ==================== 幻灯片类型 ====================

const (
	SlideTypeTitle      = "title"
	SlideTypeSection    = "section"
	SlideTypeContent    = "content"
	SlideTypeTwoColumn  = "two_column"
	SlideTypeComparison = "comparison"
	SlideTypeQuote      = "quote"
	SlideTypeClosing    = "closing"
)

// ==================== 视觉意图 ====================

const (
	VisualNone    = "none"
	VisualPhoto   = "photo"
	VisualDiagram = "diagram"
	VisualChart   = "chart"
	VisualIcon    = "icon"
)

// ==================== Box 类型 ====================

const (
	BoxKindTitle    = "title"
	BoxKindSubtitle = "subtitle"
	BoxKindBullets  = "bullets"
	BoxKindBody     = "body"
	BoxKindImage    = "image"
	BoxKindShape    = "shape"
)

// BoxKinds 闭合枚举，契约校验用
var BoxKinds = []string{BoxKindTitle, BoxKindSubtitle, BoxKindBullets, BoxKindBody, BoxKindImage, BoxKindShape}

// TextBoxKinds 承载文字的 Box 类型（密度计算只统计这些）
var TextBoxKinds = map[string]bool{
	BoxKindTitle:    true,
	BoxKindSubtitle: true,
	BoxKindBullets:  true,
	BoxKindBody:     true,
}

// ==================== 核心结构 ====================

// Deck 一次生成产出的完整演示文稿
type Deck struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Theme      *Theme       `json:"theme"`
	Decoration string       `json:"decoration,omitempty"`
	Slides     []*Slide     `json:"slides"`
	Metadata   DeckMetadata `json:"metadata"`
}

// DeckMetadata 元信息
type DeckMetadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`
}

// Slide 单页
// ID 和 Order 创建后不可变，其余字段允许被 patch 覆盖
// Order 必须是与数组下标一致的 0..N-1 紧密序列
type Slide struct {
	ID             string           `json:"id"`
	Order          int              `json:"order"`
	SlideType      string           `json:"slideType"`
	Title          string           `json:"title"`
	Subtitle       string           `json:"subtitle,omitempty"`
	Bullets        []string         `json:"bullets,omitempty"`
	BodyText       string           `json:"bodyText,omitempty"`
	SpeakerNotes   string           `json:"speakerNotes,omitempty"`
	SelectedAssets []*SelectedAsset `json:"selectedAssets,omitempty"`
	VisualIntent   string           `json:"visualIntent,omitempty"`
	LayoutPlan     *LayoutPlan      `json:"layoutPlan,omitempty"`
}

// SelectedAsset 已解析的视觉素材
type SelectedAsset struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"` // photo / diagram / chart / icon
	URL      string `json:"url,omitempty"`
	SVG      string `json:"svg,omitempty"`
	Provider string `json:"provider,omitempty"`
	Query    string `json:"query,omitempty"`
}

// HasImage 是否携带可用的图片素材
func (s *Slide) HasImage() bool {
	for _, a := range s.SelectedAssets {
		if a != nil && (a.URL != "" || a.SVG != "") {
			return true
		}
	}
	return false
}

// ==================== 主题 ====================

// Theme 整套 Deck 共用一个主题
type Theme struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Palette     Palette  `json:"palette"`
	HeadingFont string   `json:"headingFont"`
	BodyFont    string   `json:"bodyFont"`
	Decorations []string `json:"decorations,omitempty"`
}

// Palette 配色
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}

// ==================== 布局 ====================

// LayoutPlan 每页一份，坐标使用画布单位（非归一化）
type LayoutPlan struct {
	Version string  `json:"version"`
	SlideW  float64 `json:"slideW"`
	SlideH  float64 `json:"slideH"`
	Boxes   []*Box  `json:"boxes"`
}

// Box 布局中一个定位区域
// 不变式: 0<=x, 0<=y, x+w<=slideW, y+h<=slideH, w,h>=0.1
type Box struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	FontFace string  `json:"fontFace,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`
	Fill     string  `json:"fill,omitempty"`
	Line     string  `json:"line,omitempty"`
	Radius   float64 `json:"radius,omitempty"`
	Align    string  `json:"align,omitempty"`
	VAlign   string  `json:"valign,omitempty"`
}

// Area 面积（画布单位平方）
func (b *Box) Area() float64 {
	return b.W * b.H
}

// InBounds 校验边界不变式
func (b *Box) InBounds(slideW, slideH float64) bool {
	return b.X >= 0 && b.Y >= 0 &&
		b.W >= MinBoxSize && b.H >= MinBoxSize &&
		b.X+b.W <= slideW && b.Y+b.H <= slideH
}

// ==================== QA ====================

const (
	QaLevelInfo = "info"
	QaLevelWarn = "warn"
	QaLevelFail = "fail"
)

// QaIssue 单条质检问题
type QaIssue struct {
	Level   string `json:"level"`
	SlideID string `json:"slideId,omitempty"`
	Message string `json:"message"`
}

// QaReport 质检报告
// Pass 成立当且仅当：没有 fail 级问题 且 Score >= 70
type QaReport struct {
	Pass   bool      `json:"pass"`
	Score  int       `json:"score"`
	Issues []QaIssue `json:"issues"`
}

// HasFail 是否存在 fail 级问题
func (r *QaReport) HasFail() bool {
	for _, is := range r.Issues {
		if is.Level == QaLevelFail {
			return true
		}
	}
	return false
}
