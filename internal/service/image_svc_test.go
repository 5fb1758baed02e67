package service

import (
	"context"
	"testing"
	"time"

	"deck_dev_v1_202608/internal/model"
)

func TestNewImageService_DefaultTimeout(t *testing.T) {
	svc := NewImageService(&ImageConfig{})
	if svc.Config.Timeout != 10*time.Second {
		t.Errorf("默认超时 = %v, want 10s", svc.Config.Timeout)
	}
}

func TestImageService_PicsumFallback(t *testing.T) {
	// 无任何密钥时链路末端的 Picsum 必须给出结果，且不发起网络请求
	svc := NewImageService(&ImageConfig{})

	asset, err := svc.Search(context.Background(), "quarterly revenue")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if asset.Kind != model.VisualPhoto {
		t.Errorf("Kind = %s, want photo", asset.Kind)
	}
	if asset.Provider != "picsum" {
		t.Errorf("Provider = %s, want picsum", asset.Provider)
	}
	if asset.URL == "" {
		t.Error("URL 为空")
	}

	// 种子取自 query，同一查询 URL 可复现
	again, _ := svc.Search(context.Background(), "quarterly revenue")
	if asset.URL != again.URL {
		t.Errorf("同一查询 URL 不一致: %s vs %s", asset.URL, again.URL)
	}
}
