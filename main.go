package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

func main() {
	fmt.Println(">>> 开始执行 Gemini 连通性测试...")

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("❌ 未设置 GEMINI_API_KEY")
	}

	client := resty.New()
	client.SetTimeout(15 * time.Second)
	client.SetRetryCount(2)

	// 列模型接口不花 token，适合探连通性
	resp, err := client.R().
		SetQueryParam("key", apiKey).
		Get("https://generativelanguage.googleapis.com/v1beta/models")

	if err != nil {
		log.Fatalf("❌ 请求失败 (可能是网络不通): %v", err)
	}

	if resp.StatusCode() == 200 {
		fmt.Println("🎉 测试成功！Gemini API 可用！")
	} else {
		fmt.Printf("⚠️ 连接通了，但 Gemini 拒绝了请求 (状态码 %d)\n", resp.StatusCode())
		fmt.Printf("错误信息: %s\n", resp.String())
		fmt.Println("提示: 如果是 400/403，通常是 API Key 填错了；如果是 429，是请求太快了。")
	}
}
