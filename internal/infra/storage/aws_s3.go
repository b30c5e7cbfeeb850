/*
 * @Description: AWS S3 (及兼容服务) 附件存储
 * @Author: 安知鱼
 * @Date: 2026-03-13 11:05:37
 * @LastEditTime: 2026-04-02 16:12:48
 * @LastEditors: 安知鱼
 */
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3Options 是 S3 存储的连接参数，Endpoint 为空时使用 AWS 官方地址
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL 为空时返回 virtual-hosted 风格的对象地址
	PublicURL string
}

// AWSS3Provider 实现了 IStorageProvider
type AWSS3Provider struct {
	client *s3.Client
	opts   S3Options
	logger *zap.Logger
}

func NewAWSS3Provider(ctx context.Context, opts S3Options, logger *zap.Logger) (*AWSS3Provider, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("S3 存储缺少存储桶名称")
	}
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("S3 存储缺少 AccessKey 或 SecretKey")
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("创建 S3 配置失败: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			// 自定义 endpoint (MinIO 等) 通常需要 path-style
			o.UsePathStyle = true
		}
	})

	logger.Info("S3 附件存储已就绪", zap.String("bucket", opts.Bucket), zap.String("region", opts.Region))
	return &AWSS3Provider{client: client, opts: opts, logger: logger}, nil
}

func (p *AWSS3Provider) Upload(ctx context.Context, key, contentType string, data []byte) (*UploadResult, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// 显式设置长度和校验和，兼容第三方 S3 服务
	hash := sha256.Sum256(data)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(p.opts.Bucket),
		Key:            aws.String(cleaned),
		Body:           bytes.NewReader(data),
		ContentLength:  aws.Int64(int64(len(data))),
		ContentType:    aws.String(contentType),
		ChecksumSHA256: aws.String(base64.StdEncoding.EncodeToString(hash[:])),
	})
	if err != nil {
		p.logger.Error("上传附件到 S3 失败", zap.String("key", cleaned), zap.Error(err))
		return nil, fmt.Errorf("上传附件到 S3 失败: %w", err)
	}
	return &UploadResult{Key: cleaned, URL: p.objectURL(cleaned), Size: int64(len(data))}, nil
}

func (p *AWSS3Provider) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("从 S3 获取附件失败: %w", err)
	}
	return out.Body, nil
}

func (p *AWSS3Provider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("从 S3 删除附件失败: %w", err)
	}
	return nil
}

func (p *AWSS3Provider) objectURL(key string) string {
	if p.opts.PublicURL != "" {
		return strings.TrimRight(p.opts.PublicURL, "/") + "/" + key
	}
	if p.opts.Endpoint != "" {
		return strings.TrimRight(p.opts.Endpoint, "/") + "/" + p.opts.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.opts.Bucket, p.opts.Region, key)
}
