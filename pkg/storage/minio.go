// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
// 数据集快照与向量索引产物都以对象形式镜像到 MinIO，便于多实例共享与重建。
package storage

import (
	"context"
	"errors"

	"cinematch-go/internal/config"
	"cinematch-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient 是一个全局的 MinIO 客户端实例。
var MinioClient *minio.Client

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	// 1. 初始化 MinIO 客户端
	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("初始化 MinIO 客户端失败", err)
	}

	log.Info("MinIO 客户端初始化成功")

	// 2. 检查存储桶是否存在，如果不存在则创建
	ctx := context.Background()
	bucketName := cfg.BucketName
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("检查 MinIO 存储桶失败", err)
	}

	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", bucketName)
		err = MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			log.Fatal("创建 MinIO 存储桶失败", err)
		}
		log.Infof("存储桶 '%s' 创建成功", bucketName)
	} else {
		log.Infof("存储桶 '%s' 已存在", bucketName)
	}
}

// DownloadObject 将对象下载到本地文件。对象不存在时返回 ErrObjectNotFound。
func DownloadObject(ctx context.Context, bucketName, objectName, localPath string) error {
	err := MinioClient.FGetObject(ctx, bucketName, objectName, localPath, minio.GetObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}

// UploadFile 将本地文件上传为对象。
func UploadFile(ctx context.Context, bucketName, objectName, localPath, contentType string) error {
	_, err := MinioClient.FPutObject(ctx, bucketName, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// ErrObjectNotFound 表示请求的对象在存储桶中不存在。
var ErrObjectNotFound = errors.New("object not found in bucket")
