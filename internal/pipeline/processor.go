// Package pipeline 定义了语料构建（索引重建）的核心流程。
package pipeline

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"cinematch-go/internal/config"
	"cinematch-go/internal/model"
	"cinematch-go/internal/repository"
	"cinematch-go/internal/vectorindex"
	"cinematch-go/pkg/es"
	"cinematch-go/pkg/log"
	"cinematch-go/pkg/storage"
	"cinematch-go/pkg/tasks"
	"cinematch-go/pkg/textnorm"
)

// SwapFunc 在新索引构建完成后被调用，用于整体替换在线服务持有的索引。
type SwapFunc func(idx *vectorindex.VectorIndex)

// Processor 封装了索引构建的所有依赖和逻辑。
type Processor struct {
	normalizer *textnorm.Normalizer
	movieRepo  repository.MovieRepository
	datasetCfg config.DatasetConfig
	indexCfg   config.IndexConfig
	minioCfg   config.MinIOConfig
	esCfg      config.ElasticsearchConfig
	onSwap     SwapFunc
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	normalizer *textnorm.Normalizer,
	movieRepo repository.MovieRepository,
	datasetCfg config.DatasetConfig,
	indexCfg config.IndexConfig,
	minioCfg config.MinIOConfig,
	esCfg config.ElasticsearchConfig,
	onSwap SwapFunc,
) *Processor {
	return &Processor{
		normalizer: normalizer,
		movieRepo:  movieRepo,
		datasetCfg: datasetCfg,
		indexCfg:   indexCfg,
		minioCfg:   minioCfg,
		esCfg:      esCfg,
		onSwap:     onSwap,
	}
}

// Process 是索引重建的主函数。
// 构建失败时不产出任何部分结果：索引目录的替换是原子的，movies 表替换在事务内。
func (p *Processor) Process(ctx context.Context, task tasks.IndexBuildTask) error {
	log.Infof("[Processor] 开始索引重建, TaskID: %s, ForceFetch: %v", task.TaskID, task.ForceFetch)

	// 1. 确保数据集快照存在
	log.Info("[Processor] 步骤1: 确保原始数据集存在")
	if err := EnsureDataset(ctx, p.datasetCfg, p.minioCfg, task.ForceFetch); err != nil {
		log.Errorf("[Processor] 获取数据集失败: %v", err)
		return fmt.Errorf("获取数据集失败: %w", err)
	}

	// 2. 加载并投影原始记录
	log.Info("[Processor] 步骤2: 加载原始电影记录")
	raws, err := LoadRawRecords(p.datasetCfg.LocalPath)
	if err != nil {
		log.Errorf("[Processor] 加载原始记录失败: %v", err)
		return err
	}
	log.Infof("[Processor] 步骤2: 共读取 %d 条原始记录", len(raws))

	// 3. 构建 VectorIndex（过滤、归一化、TF-IDF、两两相似度）
	log.Info("[Processor] 步骤3: 构建向量索引")
	idx, err := vectorindex.Build(raws, p.normalizer, p.indexCfg.MaxFeatures)
	if err != nil {
		log.Errorf("[Processor] 构建向量索引失败: %v", err)
		return err
	}
	log.Infof("[Processor] 步骤3: 构建完成, 存活记录 %d 条, 词表规模 %d", idx.Size(), idx.Model.VocabSize())

	// 4. 原子持久化索引产物
	log.Infof("[Processor] 步骤4: 持久化索引到 %s", p.indexCfg.Dir)
	if err := idx.Save(p.indexCfg.Dir); err != nil {
		log.Errorf("[Processor] 持久化索引失败: %v", err)
		return fmt.Errorf("持久化索引失败: %w", err)
	}

	// 5. 整表替换 movies 服务副本
	log.Info("[Processor] 步骤5: 替换 movies 表")
	movies := make([]*model.Movie, 0, idx.Size())
	for i, rec := range idx.Records {
		movies = append(movies, &model.Movie{
			RowIdx:   i,
			Title:    rec.Title,
			Genres:   rec.Genres,
			Keywords: rec.Keywords,
			Overview: rec.Overview,
		})
	}
	if err := p.movieRepo.ReplaceAll(movies); err != nil {
		log.Errorf("[Processor] 替换 movies 表失败: %v", err)
		return fmt.Errorf("替换 movies 表失败: %w", err)
	}

	// 6. 重建 Elasticsearch 标题索引（只影响选择器检索，失败不阻断重建）
	log.Info("[Processor] 步骤6: 重建 Elasticsearch 标题索引")
	if err := p.reindexTitles(ctx, idx); err != nil {
		log.Warnf("[Processor] 重建标题索引失败（标题检索降级，推荐不受影响）: %v", err)
	}

	// 7. 上传索引产物到 MinIO（镜像备份，失败不阻断重建）
	log.Info("[Processor] 步骤7: 上传索引产物到 MinIO")
	if err := p.uploadArtifacts(ctx); err != nil {
		log.Warnf("[Processor] 上传索引产物失败: %v", err)
	}

	// 8. 整体替换在线索引
	if p.onSwap != nil {
		p.onSwap(idx)
		log.Info("[Processor] 步骤8: 在线索引已整体替换")
	}

	log.Infof("[Processor] 索引重建完成, TaskID: %s", task.TaskID)
	return nil
}

// reindexTitles 删除并重建标题索引，然后逐条写入标题文档。
func (p *Processor) reindexTitles(ctx context.Context, idx *vectorindex.VectorIndex) error {
	if err := es.RecreateIndex(p.esCfg.IndexName); err != nil {
		return err
	}
	for i, rec := range idx.Records {
		doc := model.MovieTitleDoc{RowIdx: i, Title: rec.Title, Genres: rec.Genres}
		if err := es.IndexTitleDoc(ctx, p.esCfg.IndexName, doc); err != nil {
			return fmt.Errorf("索引标题文档 row_idx=%d 失败: %w", i, err)
		}
	}
	return nil
}

// uploadArtifacts 将索引目录下的三个产物文件镜像到 MinIO。
func (p *Processor) uploadArtifacts(ctx context.Context) error {
	for _, name := range vectorindex.ArtifactFiles() {
		localPath := filepath.Join(p.indexCfg.Dir, name)
		objectName := path.Join(p.indexCfg.ObjectPrefix, name)
		if err := storage.UploadFile(ctx, p.minioCfg.BucketName, objectName, localPath, "application/json"); err != nil {
			return fmt.Errorf("上传 %s 失败: %w", name, err)
		}
	}
	return nil
}
