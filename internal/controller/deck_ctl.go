package controller

import (
	"errors"
	"io"
	"net/http"

	"deck_dev_v1_202608/internal/api/dto"
	"deck_dev_v1_202608/internal/repository"
	"deck_dev_v1_202608/internal/service"

	"github.com/gin-gonic/gin"
)

// ==================== 控制器 ====================

// DeckController Deck 生成与编辑控制器
type DeckController struct {
	orchestrator *service.OrchestratorService
	edit         *service.EditService
	qa           *service.QaService
	repair       *service.RepairService
	store        *repository.DeckStore
}

func NewDeckController(
	orchestrator *service.OrchestratorService,
	edit *service.EditService,
	qa *service.QaService,
	repair *service.RepairService,
	store *repository.DeckStore,
) *DeckController {
	return &DeckController{
		orchestrator: orchestrator,
		edit:         edit,
		qa:           qa,
		repair:       repair,
		store:        store,
	}
}

// ==================== API 方法 ====================

// Generate 一次性生成
// @Summary 从提示词生成整套 Deck
// @Router /api/deck/generate [post]
func (ctrl *DeckController) Generate(c *gin.Context) {
	var req dto.GenerateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "参数错误: " + err.Error()})
		return
	}
	if req.SlideCount < 0 || req.SlideCount > 30 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "slideCount 必须在 1-30 之间"})
		return
	}

	// 内容质量问题走 warnings / qa.pass，不走非 2xx
	result := ctrl.orchestrator.Generate(c.Request.Context(), &req, nil)
	c.JSON(http.StatusOK, result)
}

// GenerateStream 流式生成 (SSE)
// @Summary 生成并推送阶段事件
// @Router /api/deck/generate/stream [post]
func (ctrl *DeckController) GenerateStream(c *gin.Context) {
	var req dto.GenerateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "参数错误: " + err.Error()})
		return
	}
	if req.SlideCount < 0 || req.SlideCount > 30 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "slideCount 必须在 1-30 之间"})
		return
	}

	// 有界缓冲：消费端跟不上就丢事件，生成端永不等待
	events := make(chan dto.StreamEvent, 64)
	go func() {
		defer close(events)
		ctrl.orchestrator.Generate(c.Request.Context(), &req, events)
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(ev.Event, ev)
		return true
	})
}

// GetDeck 取回 Deck
// @Summary 按 ID 取 Deck（存储易失，重启即空）
// @Router /api/deck/{deck_id} [get]
func (ctrl *DeckController) GetDeck(c *gin.Context) {
	deck, err := ctrl.store.Get(c.Param("deck_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "deck 不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deck": deck})
}

// ListDecks Deck 摘要列表
// @Summary 列出存储中的全部 Deck
// @Router /api/deck [get]
func (ctrl *DeckController) ListDecks(c *gin.Context) {
	decks := ctrl.store.List()
	summaries := make([]dto.DeckSummary, 0, len(decks))
	for _, d := range decks {
		summaries = append(summaries, dto.DeckSummary{
			ID:         d.ID,
			Title:      d.Title,
			SlideCount: len(d.Slides),
			UpdatedAt:  d.Metadata.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "decks": summaries})
}

// EditSlide AI 编辑/直改单页
// @Summary 按指令或 patch 修改单页，id/order 不可写
// @Router /api/deck/{deck_id}/slides/{slide_id}/ai-edit [post]
func (ctrl *DeckController) EditSlide(c *gin.Context) {
	var req dto.SlideEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "参数错误: " + err.Error()})
		return
	}

	result, err := ctrl.edit.EditSlide(c.Request.Context(), c.Param("deck_id"), c.Param("slide_id"), &req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrDeckNotFound) || errors.Is(err, repository.ErrSlideNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunQA 重算质检报告
// @Summary QA 总是现算，不读陈旧状态
// @Router /api/deck/{deck_id}/qa/run [post]
func (ctrl *DeckController) RunQA(c *gin.Context) {
	deckID := c.Param("deck_id")
	deck, err := ctrl.store.Get(deckID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "deck 不存在"})
		return
	}

	c.JSON(http.StatusOK, dto.QaRunResult{
		Success: true,
		DeckID:  deckID,
		Report:  ctrl.qa.Evaluate(deck),
	})
}

// Repair 确定性修复
// @Summary 模板回落 + 过载拆分，返回修复后报告与动作
// @Router /api/deck/{deck_id}/repair [post]
func (ctrl *DeckController) Repair(c *gin.Context) {
	deckID := c.Param("deck_id")
	deck, err := ctrl.store.Get(deckID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "deck 不存在"})
		return
	}

	report := ctrl.qa.Evaluate(deck)
	report, actions := ctrl.repair.Repair(deck, report)
	ctrl.store.Put(deck)

	if actions == nil {
		actions = []string{}
	}
	c.JSON(http.StatusOK, dto.RepairResult{
		Success: true,
		DeckID:  deckID,
		Report:  report,
		Actions: actions,
	})
}
