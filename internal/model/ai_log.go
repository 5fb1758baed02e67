package model

import "gorm.io/datatypes"

// AICallLog AI调用日志
type AICallLog struct {
	BaseModel

	// 关联
	DeckID string `gorm:"size:64;index;comment:Deck ID"`
	Stage  string `gorm:"size:32;index;comment:流水线阶段(outline/style/layout/...)"`

	// 调用信息
	CallType  string `gorm:"size:32;index;comment:调用类型(text/image)"`
	ModelName string `gorm:"size:64;comment:模型名称"`

	// 用量统计
	InputTokens  int `gorm:"default:0;comment:输入token数"`
	OutputTokens int `gorm:"default:0;comment:输出token数"`
	ImageCount   int `gorm:"default:0;comment:检索图片数量"`

	// 性能与成本
	DurationMs int64   `gorm:"comment:耗时(毫秒)"`
	CostUSD    float64 `gorm:"type:decimal(10,6);default:0;comment:成本(美元)"`

	// 状态
	Status   string `gorm:"size:32;index;default:success;comment:状态(success/failed)"`
	ErrorMsg string `gorm:"size:1024;comment:错误信息"`

	// 附加信息（重试次数、provider 等）
	Extra datatypes.JSON `gorm:"comment:附加元数据"`
}

func (AICallLog) TableName() string {
	return "ai_call_logs"
}

// ==================== 调用类型常量 ====================

const (
	AICallTypeText  = "text"
	AICallTypeImage = "image"
)

// ==================== 状态常量 ====================

const (
	AICallStatusSuccess = "success"
	AICallStatusFailed  = "failed"
)

// ==================== 阶段常量 ====================

const (
	StageOutline      = "outline"
	StageVisualIntent = "visual_intent"
	StageAssets       = "assets"
	StageStyle        = "style"
	StageRefine       = "content_refine"
	StageLayout       = "layout"
	StageQA           = "qa"
	StageRepair       = "repair"
	StageDone         = "done"
	StageEdit         = "slide_edit"
)
