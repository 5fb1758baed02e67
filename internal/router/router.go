package router

import (
	"deck_dev_v1_202608/internal/controller"

	"github.com/gin-gonic/gin"
)

// Controllers 控制器集合
type Controllers struct {
	Deck  *controller.DeckController
	Usage *controller.UsageController
}

// SetupRouter 注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		// deck 生成与编辑
		deck := api.Group("/deck")
		{
			// POST /api/deck/generate
			deck.POST("/generate", ctls.Deck.Generate)
			// POST /api/deck/generate/stream (SSE)
			deck.POST("/generate/stream", ctls.Deck.GenerateStream)

			deck.GET("", ctls.Deck.ListDecks)
			deck.GET("/:deck_id", ctls.Deck.GetDeck)
			deck.POST("/:deck_id/slides/:slide_id/ai-edit", ctls.Deck.EditSlide)
			deck.POST("/:deck_id/qa/run", ctls.Deck.RunQA)
			deck.POST("/:deck_id/repair", ctls.Deck.Repair)
		}

		// AI 用量统计
		usage := api.Group("/ai/usage")
		{
			usage.GET("", ctls.Usage.GetUsage)
			usage.GET("/daily", ctls.Usage.GetDailyUsage)
			usage.GET("/deck/:deck_id", ctls.Usage.GetDeckUsage)
		}
	}

	return r
}
