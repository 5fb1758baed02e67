package service

import (
	"context"
	"fmt"
	"time"

	"deck_dev_v1_202608/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// ==================== 接口 ====================

// ImageSearcher 外部图片检索能力
type ImageSearcher interface {
	Search(ctx context.Context, query string) (*model.SelectedAsset, error)
}

// ==================== 配置 ====================

// ImageConfig 图片检索配置
type ImageConfig struct {
	UnsplashAccessKey string
	PexelsAPIKey      string
	Timeout           time.Duration
}

// ==================== 服务 ====================

// ImageService 多 Provider 顺序回退：Unsplash -> Pexels -> Picsum
// Picsum 不需要密钥，保证链路末端总有结果
type ImageService struct {
	Config *ImageConfig
	client *resty.Client
}

func NewImageService(cfg *ImageConfig) *ImageService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetRetryCount(2)

	return &ImageService{Config: cfg, client: client}
}

// Search 按回退顺序尝试各 Provider，第一个成功的结果胜出
func (s *ImageService) Search(ctx context.Context, query string) (*model.SelectedAsset, error) {
	type provider struct {
		name string
		fn   func(ctx context.Context, query string) (*model.SelectedAsset, error)
	}

	providers := []provider{}
	if s.Config.UnsplashAccessKey != "" {
		providers = append(providers, provider{"unsplash", s.searchUnsplash})
	}
	if s.Config.PexelsAPIKey != "" {
		providers = append(providers, provider{"pexels", s.searchPexels})
	}
	providers = append(providers, provider{"picsum", s.searchPicsum})

	var lastErr error
	for _, p := range providers {
		asset, err := p.fn(ctx, query)
		if err != nil {
			lastErr = fmt.Errorf("%s: %v", p.name, err)
			continue
		}
		return asset, nil
	}
	return nil, fmt.Errorf("所有图片 Provider 均失败: %v", lastErr)
}

// ==================== Provider 实现 ====================

func (s *ImageService) searchUnsplash(ctx context.Context, query string) (*model.SelectedAsset, error) {
	var result struct {
		Results []struct {
			ID   string `json:"id"`
			Urls struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Client-ID "+s.Config.UnsplashAccessKey).
		SetQueryParams(map[string]string{
			"query":       query,
			"per_page":    "1",
			"orientation": "landscape",
		}).
		SetResult(&result).
		Get("https://api.unsplash.com/search/photos")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("无匹配结果")
	}

	return &model.SelectedAsset{
		ID:       uuid.NewString(),
		Kind:     model.VisualPhoto,
		URL:      result.Results[0].Urls.Regular,
		Provider: "unsplash",
		Query:    query,
	}, nil
}

func (s *ImageService) searchPexels(ctx context.Context, query string) (*model.SelectedAsset, error) {
	var result struct {
		Photos []struct {
			ID  int `json:"id"`
			Src struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", s.Config.PexelsAPIKey).
		SetQueryParams(map[string]string{
			"query":       query,
			"per_page":    "1",
			"orientation": "landscape",
		}).
		SetResult(&result).
		Get("https://api.pexels.com/v1/search")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	if len(result.Photos) == 0 {
		return nil, fmt.Errorf("无匹配结果")
	}

	return &model.SelectedAsset{
		ID:       uuid.NewString(),
		Kind:     model.VisualPhoto,
		URL:      result.Photos[0].Src.Large,
		Provider: "pexels",
		Query:    query,
	}, nil
}

// searchPicsum 免密钥的随机图占位，种子取 query 保证可复现
func (s *ImageService) searchPicsum(ctx context.Context, query string) (*model.SelectedAsset, error) {
	url := fmt.Sprintf("https://picsum.photos/seed/%s/1280/720", uuid.NewSHA1(uuid.NameSpaceURL, []byte(query)).String()[:8])
	return &model.SelectedAsset{
		ID:       uuid.NewString(),
		Kind:     model.VisualPhoto,
		URL:      url,
		Provider: "picsum",
		Query:    query,
	}, nil
}
