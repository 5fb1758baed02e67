package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"deck_dev_v1_202608/internal/controller"
	"deck_dev_v1_202608/internal/model"
	"deck_dev_v1_202608/internal/repository"
	"deck_dev_v1_202608/internal/router"
	"deck_dev_v1_202608/internal/service"
	"deck_dev_v1_202608/internal/task"
	"deck_dev_v1_202608/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化数据库（AI 调用日志用）
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Store       *repository.DeckStore
	Controllers *router.Controllers
	Services    *Services
}

// Services 服务集合
type Services struct {
	AI           *service.AIService
	Outline      *service.OutlineService
	Visual       *service.VisualService
	Image        *service.ImageService
	Storage      *service.StorageService
	Asset        *service.AssetService
	Style        *service.StyleService
	Refine       *service.RefineService
	Layout       *service.LayoutService
	QA           *service.QaService
	Repair       *service.RepairService
	Edit         *service.EditService
	Orchestrator *service.OrchestratorService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	return database.InitDB(
		getEnv("DATABASE_DSN", ""),
		&model.AICallLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo / Store 层 --------
	aiLogRepo := repository.NewAICallLogRepository(db)
	store := repository.NewDeckStore()

	// -------- 基础服务 --------
	aiSvc := service.NewAIService(&service.AIConfig{
		ApiKey: getEnv("GEMINI_API_KEY", ""),
	}, aiLogRepo)
	imageSvc := service.NewImageService(&service.ImageConfig{
		UnsplashAccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),
		PexelsAPIKey:      getEnv("PEXELS_API_KEY", ""),
	})
	storageSvc := initStorageService()

	// -------- 流水线服务 --------
	visualSvc := service.NewVisualService()
	qaSvc := service.NewQaService(service.DefaultQaConfig())
	layoutSvc := service.NewLayoutService(aiSvc)

	services := &Services{
		AI:      aiSvc,
		Outline: service.NewOutlineService(aiSvc),
		Visual:  visualSvc,
		Image:   imageSvc,
		Storage: storageSvc,
		Asset:   service.NewAssetService(visualSvc, imageSvc, storageSvc),
		Style:   service.NewStyleService(aiSvc),
		Refine:  service.NewRefineService(aiSvc),
		Layout:  layoutSvc,
		QA:      qaSvc,
		Repair:  service.NewRepairService(service.DefaultRepairConfig(), qaSvc),
		Edit:    service.NewEditService(aiSvc, store),
	}
	services.Orchestrator = service.NewOrchestratorService(
		services.Outline, services.Visual, services.Asset, services.Style,
		services.Refine, services.Layout, services.QA, services.Repair, store,
	)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Deck: controller.NewDeckController(
			services.Orchestrator, services.Edit, services.QA, services.Repair, store,
		),
		Usage: controller.NewUsageController(aiLogRepo),
	}

	return &Dependencies{
		DB:          db,
		Store:       store,
		Controllers: controllers,
		Services:    services,
	}
}

// initStorageService 初始化存储服务
func initStorageService() *service.StorageService {
	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "deck-assets"),
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败，SVG 素材将内联返回: %v", err)
		return nil
	}
	return storageSvc
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	ttlHours, _ := strconv.Atoi(getEnv("DECK_TTL_HOURS", "24"))

	cleanupTask := task.NewDeckCleanupTask(deps.Store, time.Duration(ttlHours)*time.Hour)
	cleanupTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
