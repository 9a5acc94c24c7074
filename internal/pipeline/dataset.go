package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"cinematch-go/internal/config"
	"cinematch-go/internal/model"
	"cinematch-go/pkg/log"
	"cinematch-go/pkg/storage"
)

// 原始数据集必须包含的四个列。其余列一律忽略。
var requiredColumns = []string{"title", "genres", "keywords", "overview"}

// EnsureDataset 保证本地存在一份原始数据集快照。
// 查找顺序：本地文件 -> MinIO 对象 -> 远程 URL 下载（下载成功后回传 MinIO）。
// force 为 true 时跳过本地副本，强制重新获取。
func EnsureDataset(ctx context.Context, datasetCfg config.DatasetConfig, minioCfg config.MinIOConfig, force bool) error {
	if !force {
		if _, err := os.Stat(datasetCfg.LocalPath); err == nil {
			log.Infof("[Dataset] 本地数据集已存在: %s", datasetCfg.LocalPath)
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(datasetCfg.LocalPath), 0o755); err != nil {
		return fmt.Errorf("创建数据集目录失败: %w", err)
	}

	// 1. 尝试从 MinIO 拉取快照
	if datasetCfg.ObjectName != "" {
		log.Infof("[Dataset] 尝试从 MinIO 获取数据集, Bucket: %s, Object: %s", minioCfg.BucketName, datasetCfg.ObjectName)
		err := storage.DownloadObject(ctx, minioCfg.BucketName, datasetCfg.ObjectName, datasetCfg.LocalPath)
		if err == nil {
			log.Info("[Dataset] 已从 MinIO 获取数据集快照")
			return nil
		}
		if !errors.Is(err, storage.ErrObjectNotFound) {
			log.Warnf("[Dataset] 从 MinIO 获取数据集失败: %v", err)
		}
	}

	// 2. 回退到远程 URL 下载
	if datasetCfg.RemoteURL == "" {
		return fmt.Errorf("数据集不存在且未配置远程下载地址: %s", datasetCfg.LocalPath)
	}
	log.Infof("[Dataset] 从远程地址下载数据集: %s", datasetCfg.RemoteURL)
	if err := downloadFile(ctx, datasetCfg.RemoteURL, datasetCfg.LocalPath); err != nil {
		return fmt.Errorf("下载数据集失败: %w", err)
	}
	log.Infof("[Dataset] 数据集下载完成: %s", datasetCfg.LocalPath)

	// 3. 回传 MinIO，失败不致命
	if datasetCfg.ObjectName != "" {
		if err := storage.UploadFile(ctx, minioCfg.BucketName, datasetCfg.ObjectName, datasetCfg.LocalPath, "text/csv"); err != nil {
			log.Warnf("[Dataset] 回传数据集到 MinIO 失败: %v", err)
		} else {
			log.Infof("[Dataset] 数据集已回传 MinIO: %s", datasetCfg.ObjectName)
		}
	}
	return nil
}

// downloadFile 将远程文件下载到本地，先写临时文件再重命名，避免留下残缺文件。
func downloadFile(ctx context.Context, url, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("远程地址返回非 200 状态码: %s", resp.Status)
	}

	tmpPath := localPath + ".download"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, localPath)
}

// LoadRawRecords 读取 CSV 数据集并投影出四个必填列。
// 行中对应列不存在（短行）记为缺失；空字符串不算缺失，照常存活。
// 数据集不可读属于致命构建错误，直接返回。
func LoadRawRecords(path string) ([]model.RawMovieRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取原始数据集: %w", err)
	}
	defer f.Close()

	return parseRawRecords(f)
}

// parseRawRecords 解析 CSV 流。表头必须包含全部必填列。
func parseRawRecords(r io.Reader) ([]model.RawMovieRecord, error) {
	reader := csv.NewReader(r)
	// 行宽允许不一致：短行的缺失列按"值不存在"处理
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取数据集表头失败: %w", err)
	}

	colIdx := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		colIdx[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, fmt.Errorf("数据集缺少必填列 '%s'", name)
		}
	}

	var records []model.RawMovieRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取数据集行失败: %w", err)
		}
		records = append(records, model.RawMovieRecord{
			Title:    fieldAt(row, colIdx["title"]),
			Genres:   fieldAt(row, colIdx["genres"]),
			Keywords: fieldAt(row, colIdx["keywords"]),
			Overview: fieldAt(row, colIdx["overview"]),
		})
	}
	return records, nil
}

// fieldAt 返回行中指定列的值；列不存在时返回 nil 表示缺失。
func fieldAt(row []string, idx int) *string {
	if idx >= len(row) {
		return nil
	}
	return &row[idx]
}
