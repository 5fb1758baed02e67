package service

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"deck_dev_v1_202608/internal/model"
)

func TestNewAIService_DefaultConfig(t *testing.T) {
	svc := NewAIService(&AIConfig{}, nil)

	if svc.Config.TextModel != "gemini-3-flash" {
		t.Errorf("默认 TextModel 不正确: got %s, want gemini-3-flash", svc.Config.TextModel)
	}
	if svc.Config.Timeout != 60*time.Second {
		t.Errorf("默认超时不正确: got %v", svc.Config.Timeout)
	}
}

func TestAIService_NoApiKey(t *testing.T) {
	svc := NewAIService(&AIConfig{}, nil)

	_, err := svc.Generate(context.Background(), model.StageOutline, "", "sys", "user", 100)
	if err == nil {
		t.Error("未配置 API Key 应当返回错误")
	}
}

func TestEstimateTextCost(t *testing.T) {
	if got := estimateTextCost(0, 0); got != 0 {
		t.Errorf("零用量成本 = %v, want 0", got)
	}

	got := estimateTextCost(1_000_000, 1_000_000)
	want := 0.075 + 0.30
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("百万 token 成本 = %v, want %v", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456789" {
		t.Errorf("truncate = %q", got)
	}
}

func TestAIService_GenerateOutline(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("跳过: 需要设置 GEMINI_API_KEY 环境变量")
	}

	svc := NewAIService(&AIConfig{ApiKey: apiKey}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	raw, err := svc.Generate(ctx, model.StageOutline, "",
		"You are a presentation strategist. You only answer with JSON.",
		`Create a 3 slide outline about coffee brewing. Output JSON only: {"title": "...", "slides": [{"slideType": "title", "title": "..."}]}`,
		2048)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(stripCodeFence(raw), &decoded); err != nil {
		t.Fatalf("输出不是合法 JSON: %v\n%s", err, raw)
	}
	t.Logf("大纲输出: %d 字节", len(raw))
}
