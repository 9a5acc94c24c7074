// Package service 提供了推荐相关的业务逻辑。
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"cinematch-go/internal/model"
	"cinematch-go/internal/repository"
	"cinematch-go/internal/vectorindex"
	"cinematch-go/pkg/log"
	"cinematch-go/pkg/omdb"
)

// ErrIndexNotReady 表示向量索引尚未构建或加载完成。
var ErrIndexNotReady = errors.New("向量索引尚未就绪")

// 上限防止单次请求拖垮枚举；原始界面的 K 固定为个位数
const maxTopK = 50

// RecommendService 接口定义了内容相似度推荐操作。
//
// 推荐是对不可变索引的纯读取：不加锁、无内部状态变更，
// 可以被任意多个调用方并发调用。索引通过 SwapIndex 整体替换。
type RecommendService interface {
	// Recommend 返回排名并补全元数据后的推荐列表。
	// 标题未命中返回显式的空列表（不是错误）。
	Recommend(ctx context.Context, title string, k int) ([]model.RecommendationDTO, error)
	// Rank 只做排名，不做元数据补全。排名完全来自预计算的相似度矩阵。
	Rank(title string, k int) ([]model.RecommendationDTO, error)
	// Enrich 为单条结果补全 OMDb 剧情与海报。任何失败都以哨兵值收场，绝不报错。
	Enrich(ctx context.Context, dto *model.RecommendationDTO)
	// SwapIndex 用新构建的索引整体替换当前索引（rebuild-then-swap）。
	SwapIndex(idx *vectorindex.VectorIndex)
	// Status 返回当前索引状态。
	Status() model.IndexStatusDTO
}

type recommendService struct {
	index         atomic.Pointer[vectorindex.VectorIndex]
	metadataCache repository.MetadataCacheRepository
	omdbClient    omdb.Client
	defaultTopK   int
}

// NewRecommendService 创建一个新的 RecommendService 实例。
// initial 可以为 nil，表示索引尚未就绪（首次构建完成后通过 SwapIndex 注入）。
func NewRecommendService(
	initial *vectorindex.VectorIndex,
	metadataCache repository.MetadataCacheRepository,
	omdbClient omdb.Client,
	defaultTopK int,
) RecommendService {
	s := &recommendService{
		metadataCache: metadataCache,
		omdbClient:    omdbClient,
		defaultTopK:   defaultTopK,
	}
	if initial != nil {
		s.index.Store(initial)
	}
	return s
}

// Rank 将标题解析为行号并读取预计算相似度向量完成排名。
// 查询时不经过向量化器重新计算：某个标题的推荐质量冻结于最近一次语料构建。
func (s *recommendService) Rank(title string, k int) ([]model.RecommendationDTO, error) {
	idx := s.index.Load()
	if idx == nil {
		return nil, ErrIndexNotReady
	}

	if k <= 0 {
		k = s.defaultTopK
	}
	if k > maxTopK {
		k = maxTopK
	}

	// 标题精确匹配，重复标题取首次出现的行
	row, found := idx.ResolveTitle(title)
	if !found {
		log.Infof("[RecommendService] 标题未命中: '%s'，返回空结果", title)
		return []model.RecommendationDTO{}, nil
	}

	scored := idx.TopK(row, k)
	results := make([]model.RecommendationDTO, 0, len(scored))
	for _, sc := range scored {
		rec := idx.Records[sc.Row]
		results = append(results, model.RecommendationDTO{
			RowIdx:   sc.Row,
			Title:    rec.Title,
			Genres:   rec.Genres,
			Keywords: rec.Keywords,
			Overview: rec.Overview,
			Score:    sc.Score,
			Plot:     omdb.NotAvailable,
			Poster:   omdb.NotAvailable,
		})
	}
	log.Infof("[RecommendService] 排名完成, title: '%s', row: %d, 返回 %d 条", title, row, len(results))
	return results, nil
}

// Recommend 先完成全部排名，再并发补全每条结果的元数据。
// 单条元数据查询失败或超时不会中止、也不会拖慢其余结果。
func (s *recommendService) Recommend(ctx context.Context, title string, k int) ([]model.RecommendationDTO, error) {
	results, err := s.Rank(title, k)
	if err != nil {
		return nil, err
	}

	// 排名已经完整结束，此后才允许发起外部查询
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(dto *model.RecommendationDTO) {
			defer wg.Done()
			s.Enrich(ctx, dto)
		}(&results[i])
	}
	wg.Wait()

	return results, nil
}

// Enrich 为单条结果查询剧情与海报，优先走 Redis 缓存。
// 哨兵结果 ("N/A","N/A") 不写缓存，留待下次重试。
func (s *recommendService) Enrich(ctx context.Context, dto *model.RecommendationDTO) {
	if cached, err := s.metadataCache.Get(ctx, dto.Title); err != nil {
		log.Warnf("[RecommendService] 读取元数据缓存失败, title: '%s', error: %v", dto.Title, err)
	} else if cached != nil {
		dto.Plot = cached.Plot
		dto.Poster = cached.Poster
		return
	}

	details := s.omdbClient.GetMovieDetails(ctx, dto.Title)
	dto.Plot = details.Plot
	dto.Poster = details.Poster

	if details.Plot != omdb.NotAvailable || details.Poster != omdb.NotAvailable {
		if err := s.metadataCache.Set(ctx, dto.Title, details); err != nil {
			log.Warnf("[RecommendService] 写入元数据缓存失败, title: '%s', error: %v", dto.Title, err)
		}
	}
}

// SwapIndex 原子替换当前索引。正在进行的查询继续使用旧索引直到返回。
func (s *recommendService) SwapIndex(idx *vectorindex.VectorIndex) {
	s.index.Store(idx)
	log.Infof("[RecommendService] 索引已替换, 行数: %d, 词表规模: %d", idx.Size(), idx.Model.VocabSize())
}

// Status 返回当前索引状态，供管理端查询。
func (s *recommendService) Status() model.IndexStatusDTO {
	idx := s.index.Load()
	if idx == nil {
		return model.IndexStatusDTO{Ready: false}
	}
	return model.IndexStatusDTO{
		Ready:     true,
		Rows:      idx.Size(),
		VocabSize: idx.Model.VocabSize(),
		BuiltAt:   idx.BuiltAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
