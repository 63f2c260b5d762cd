// Package s3 处理S3存储操作.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/docshield/docshield/pkg/configs"
	nlog "github.com/docshield/docshield/pkg/log"
)

// Client 包装 MinIO 客户端，固定操作配置的文档桶.
type Client struct {
	*minio.Client

	bucket string
}

// New 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().S3
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("docshield", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return &Client{Client: cli, bucket: cfg.BucketName}, nil
}

// Bucket 返回文档桶名.
func (c *Client) Bucket() string {
	return c.bucket
}

// PutBytes 写入字节对象.
func (c *Client) PutBytes(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := c.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

// GetBytes 读取整个对象.
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}

	return data, nil
}

// Reader 打开对象读取流，调用方负责 Close.
func (c *Client) Reader(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}

	return obj, nil
}

// Remove 删除对象.
func (c *Client) Remove(ctx context.Context, key string) error {
	if err := c.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}

	return nil
}

// ListKeys 列出指定前缀下的所有对象键.
func (c *Client) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	for obj := range c.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}

		keys = append(keys, obj.Key)
	}

	return keys, nil
}

// HealthCheck 简单的健康检查，通过列出桶来验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.ListBuckets(ctx)
	return err
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}
