package repository

import (
	"errors"
	"sync"
	"time"

	"deck_dev_v1_202608/internal/model"
)

// ==================== 易失 Deck 存储 ====================

// ErrDeckNotFound 目标 Deck 不在存储中
var ErrDeckNotFound = errors.New("deck not found")

// ErrSlideNotFound 目标页不在 Deck 中
var ErrSlideNotFound = errors.New("slide not found")

// DeckStore 进程内 Deck 存储：key -> Deck，整体替换 + 单页 patch
// 刻意不做持久化（无 WAL、无落盘），进程重启即清空，这是边界不是疏漏
// 同一 deck id 的并发写是后写覆盖（last-write-wins），调用方按 deck 串行编辑
type DeckStore struct {
	mu    sync.RWMutex
	decks map[string]*storeEntry
}

type storeEntry struct {
	deck       *model.Deck
	lastAccess time.Time
}

// NewDeckStore 创建存储
func NewDeckStore() *DeckStore {
	return &DeckStore{decks: make(map[string]*storeEntry)}
}

// Put 整体写入/替换
func (s *DeckStore) Put(deck *model.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks[deck.ID] = &storeEntry{deck: deck, lastAccess: time.Now()}
}

// Get 取出 Deck，不存在返回 ErrDeckNotFound
func (s *DeckStore) Get(id string) (*model.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.decks[id]
	if !ok {
		return nil, ErrDeckNotFound
	}
	entry.lastAccess = time.Now()
	return entry.deck, nil
}

// Delete 删除
func (s *DeckStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.decks, id)
}

// List 返回全部 Deck（摘要列表用）
func (s *DeckStore) List() []*model.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Deck, 0, len(s.decks))
	for _, entry := range s.decks {
		out = append(out, entry.deck)
	}
	return out
}

// PatchSlide 按 id 定位单页并应用变更函数，写回 UpdatedAt
func (s *DeckStore) PatchSlide(deckID, slideID string, apply func(*model.Slide)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.decks[deckID]
	if !ok {
		return ErrDeckNotFound
	}
	for _, slide := range entry.deck.Slides {
		if slide.ID == slideID {
			apply(slide)
			entry.deck.Metadata.UpdatedAt = time.Now().UTC()
			entry.deck.Metadata.Version++
			entry.lastAccess = time.Now()
			return nil
		}
	}
	return ErrSlideNotFound
}

// Sweep 清掉闲置超过 ttl 的 Deck，返回清理数量
func (s *DeckStore) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for id, entry := range s.decks {
		// 懒清理：只看最后访问时间
		if entry.lastAccess.Before(cutoff) {
			delete(s.decks, id)
			removed++
		}
	}
	return removed
}

// Len 当前存量
func (s *DeckStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decks)
}
