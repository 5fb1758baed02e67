package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"deck_dev_v1_202608/internal/model"
	"deck_dev_v1_202608/internal/repository"
)

// ==================== 接口 ====================

// TextGenerator 生成式文本能力
// 各 Agent 只依赖这个接口，真实实现走 Gemini，测试用 mock
type TextGenerator interface {
	// Generate 返回模型输出的原始 JSON 文本
	Generate(ctx context.Context, stage, deckID, system, user string, maxTokens int) (json.RawMessage, error)
}

// ==================== 配置 ====================

// AIConfig AI 服务配置
type AIConfig struct {
	ApiKey    string
	TextModel string
	Timeout   time.Duration
}

// ==================== 服务 ====================

type AIService struct {
	Config      *AIConfig
	callLogRepo repository.AICallLogRepository
	client      *http.Client
}

// NewAIService 创建 AI 服务
func NewAIService(cfg *AIConfig, callLogRepo repository.AICallLogRepository) *AIService {
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-3-flash"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &AIService{
		Config:      cfg,
		callLogRepo: callLogRepo,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

// ==================== 文本生成 ====================

// Generate 调用 Gemini 生成 JSON 文本
func (s *AIService) Generate(ctx context.Context, stage, deckID, system, user string, maxTokens int) (json.RawMessage, error) {
	if s.Config.ApiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 未配置")
	}

	start := time.Now()
	raw, inTokens, outTokens, err := s.callGemini(ctx, system, user, maxTokens)

	// 调用日志写失败只打日志，不影响生成
	s.logCall(ctx, stage, deckID, inTokens, outTokens, time.Since(start), err)

	return raw, err
}

func (s *AIService) callGemini(ctx context.Context, system, user string, maxTokens int) (json.RawMessage, int, int, error) {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		s.Config.TextModel, s.Config.ApiKey)

	genCfg := map[string]interface{}{
		"responseMimeType": "application/json",
	}
	if maxTokens > 0 {
		genCfg["maxOutputTokens"] = maxTokens
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": user}}},
		},
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{{"text": system}},
		},
		"generationConfig": genCfg,
	}

	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, 0, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, 0, 0, fmt.Errorf("Gemini API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	// 解析响应
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
		} `json:"usageMetadata"`
	}

	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, 0, 0, fmt.Errorf("解析响应失败: %v", err)
	}

	if len(geminiResp.Candidates) == 0 {
		return nil, 0, 0, fmt.Errorf("无生成结果")
	}

	// 提取 JSON 文本
	var jsonText string
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				jsonText = part.Text
				break
			}
		}
	}

	if jsonText == "" {
		return nil, 0, 0, fmt.Errorf("响应中未找到文本内容")
	}

	return json.RawMessage(jsonText),
		geminiResp.UsageMetadata.PromptTokenCount,
		geminiResp.UsageMetadata.CandidatesTokenCount,
		nil
}

// ==================== 调用日志 ====================

func (s *AIService) logCall(ctx context.Context, stage, deckID string, inTokens, outTokens int, dur time.Duration, callErr error) {
	if s.callLogRepo == nil {
		return
	}

	entry := &model.AICallLog{
		DeckID:       deckID,
		Stage:        stage,
		CallType:     model.AICallTypeText,
		ModelName:    s.Config.TextModel,
		InputTokens:  inTokens,
		OutputTokens: outTokens,
		DurationMs:   dur.Milliseconds(),
		CostUSD:      estimateTextCost(inTokens, outTokens),
		Status:       model.AICallStatusSuccess,
	}
	if callErr != nil {
		entry.Status = model.AICallStatusFailed
		entry.ErrorMsg = truncate(callErr.Error(), 1024)
	}

	if err := s.callLogRepo.Create(ctx, entry); err != nil {
		log.Printf("[AIService] 写调用日志失败: %v", err)
	}
}

// estimateTextCost 按 flash 档价粗估成本
func estimateTextCost(inTokens, outTokens int) float64 {
	return float64(inTokens)*0.075/1e6 + float64(outTokens)*0.30/1e6
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
