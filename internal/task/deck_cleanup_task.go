package task

import (
	"log"
	"time"

	"deck_dev_v1_202608/internal/repository"

	"github.com/robfig/cron/v3"
)

// DeckCleanupTask 定时清理易失存储里闲置过期的 Deck
// 存储本身不持久化，这里只是防止长跑进程内存无限涨
type DeckCleanupTask struct {
	store *repository.DeckStore
	Cron  *cron.Cron

	ttl time.Duration
}

func NewDeckCleanupTask(store *repository.DeckStore, ttl time.Duration) *DeckCleanupTask {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DeckCleanupTask{
		store: store,
		Cron:  cron.New(cron.WithSeconds()), // 支持秒级控制
		ttl:   ttl,
	}
}

// Start 启动清理任务
func (t *DeckCleanupTask) Start() {
	// 策略：每 30 分钟扫一遍
	// Cron: "0 0/30 * * * *"
	_, err := t.Cron.AddFunc("0 0/30 * * * *", func() {
		t.Execute()
	})
	if err != nil {
		log.Fatalf("无法启动 DeckCleanupTask: %v", err)
	}

	t.Cron.Start()
	log.Printf("[DeckCleanup] 清理任务已启动 (TTL %s, 每30分钟检查一次)", t.ttl)
}

// Execute 执行一次清理 (由 Cron 定时触发)
func (t *DeckCleanupTask) Execute() {
	removed := t.store.Sweep(t.ttl)
	if removed > 0 {
		log.Printf("[DeckCleanup] 清理 %d 个过期 Deck，存量 %d", removed, t.store.Len())
	}
}

// Stop 停掉调度器
func (t *DeckCleanupTask) Stop() {
	t.Cron.Stop()
}
