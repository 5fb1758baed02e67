package controller

import (
	"net/http"
	"time"

	"deck_dev_v1_202608/internal/repository"

	"github.com/gin-gonic/gin"
)

// UsageController AI 用量查询控制器
type UsageController struct {
	aiLogRepo repository.AICallLogRepository
}

func NewUsageController(aiLogRepo repository.AICallLogRepository) *UsageController {
	return &UsageController{aiLogRepo: aiLogRepo}
}

// GetUsage 总体用量
// @Summary 按可选时间窗统计 AI 调用用量
// @Router /api/ai/usage [get]
func (ctrl *UsageController) GetUsage(c *gin.Context) {
	start, end := parseTimeRange(c)

	stats, err := ctrl.aiLogRepo.GetUsage(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "usage": stats})
}

// GetDeckUsage 单个 Deck 的用量
// @Summary 按 deck_id 汇总 AI 调用用量
// @Router /api/ai/usage/deck/{deck_id} [get]
func (ctrl *UsageController) GetDeckUsage(c *gin.Context) {
	stats, err := ctrl.aiLogRepo.GetUsageByDeck(c.Request.Context(), c.Param("deck_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "usage": stats})
}

// GetDailyUsage 每日用量
// @Summary 近 N 天（默认 30）按天汇总
// @Router /api/ai/usage/daily [get]
func (ctrl *UsageController) GetDailyUsage(c *gin.Context) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	stats, err := ctrl.aiLogRepo.GetDailyUsage(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "daily": stats})
}

// parseTimeRange 解析 ?start=RFC3339&end=RFC3339，缺省为零值（不过滤）
func parseTimeRange(c *gin.Context) (time.Time, time.Time) {
	var start, end time.Time
	if s := c.Query("start"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			start = t
		}
	}
	if s := c.Query("end"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			end = t
		}
	}
	return start, end
}
