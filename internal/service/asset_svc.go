package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"deck_dev_v1_202608/internal/model"
)

// ==================== 素材解析 ====================

// AssetService 为有视觉意图的页解析素材
// 图表/框图走确定性 SVG；照片走外部检索（小并发池限流）
type AssetService struct {
	visual  *VisualService
	images  ImageSearcher
	storage *StorageService // 可选，nil 时 SVG 内联为 data URI

	// 对外检索的并发上限，控制出站扇出
	concurrency int
}

func NewAssetService(visual *VisualService, images ImageSearcher, storage *StorageService) *AssetService {
	return &AssetService{
		visual:      visual,
		images:      images,
		storage:     storage,
		concurrency: 2,
	}
}

// ResolveAssets 就地填充每页的 SelectedAssets
// 每个 worker 只写自己页的字段，完成顺序不影响正确性
func (s *AssetService) ResolveAssets(ctx context.Context, deck *model.Deck) []string {
	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, s.concurrency)
		mu       sync.Mutex
		warnings []string
	)

	for _, slide := range deck.Slides {
		if slide.VisualIntent == "" || slide.VisualIntent == model.VisualNone {
			continue
		}

		// SVG 生成不出网，同步做掉
		if slide.VisualIntent != model.VisualPhoto {
			if asset := s.visual.GenerateSVG(slide, deck.Theme); asset != nil {
				s.attachSVG(ctx, slide, asset)
			}
			continue
		}

		if s.images == nil {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(sl *model.Slide) {
			defer wg.Done()
			defer func() { <-sem }()

			query := sl.Title
			if query == "" {
				query = deck.Title
			}
			asset, err := s.images.Search(ctx, query)
			if err != nil {
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("第 %d 页图片检索失败: %v", sl.Order+1, err))
				mu.Unlock()
				return
			}
			sl.SelectedAssets = append(sl.SelectedAssets, asset)
		}(slide)
	}

	wg.Wait()
	return warnings
}

// attachSVG 可选上传到对象存储换取 URL，失败或未配置则内联
func (s *AssetService) attachSVG(ctx context.Context, slide *model.Slide, asset *model.SelectedAsset) {
	if s.storage != nil {
		url, err := s.storage.UploadSVG(ctx, asset.SVG, asset.Kind)
		if err != nil {
			log.Printf("[AssetService] SVG 上传失败，改用内联: %v", err)
		} else {
			asset.URL = url
		}
	}
	slide.SelectedAssets = append(slide.SelectedAssets, asset)
}
