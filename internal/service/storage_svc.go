package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ==================== 配置 ====================

type StorageConfig struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // 自定义端点 (R2/MinIO 等)
	CDNDomain string // CDN域名 (可选)
	BasePath  string // 基础路径前缀
}

// ==================== 服务 ====================

// StorageService 生成素材的对象存储，S3 兼容
// 未配置时整个服务为 nil，素材退化为内联 data URI
type StorageService struct {
	Config *StorageConfig
	client *s3.Client
}

func NewStorageService(cfg *StorageConfig) (*StorageService, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" {
		return nil, fmt.Errorf("存储配置不完整")
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "deck-assets"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &StorageService{Config: cfg, client: client}, nil
}

// ==================== 上传 ====================

// UploadSVG 上传 SVG 文本，返回公开访问 URL
func (s *StorageService) UploadSVG(ctx context.Context, svg, kind string) (string, error) {
	key := fmt.Sprintf("%s/%s/%s.svg", s.Config.BasePath, kind, uuid.NewString())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(svg)),
		ContentType: aws.String("image/svg+xml"),
	})
	if err != nil {
		return "", fmt.Errorf("上传失败: %v", err)
	}

	return s.publicURL(key), nil
}

// publicURL 拼公开 URL，优先走 CDN 域名
func (s *StorageService) publicURL(key string) string {
	if s.Config.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimSuffix(s.Config.CDNDomain, "/"), key)
	}
	if s.Config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.Config.Endpoint, "/"), s.Config.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Config.Bucket, s.Config.Region, key)
}
