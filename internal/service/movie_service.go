package service

import (
	"context"
	"fmt"

	"cinematch-go/internal/config"
	"cinematch-go/internal/model"
	"cinematch-go/internal/repository"
	"cinematch-go/pkg/es"
	"cinematch-go/pkg/log"
)

// MovieService 接口定义了电影目录相关操作（标题列表与标题检索）。
// 这些操作只服务于前端的标题选择器，与推荐排序无关。
type MovieService interface {
	ListTitles() ([]string, error)
	SearchTitles(ctx context.Context, query string, size int) ([]model.MovieTitleDoc, error)
}

type movieService struct {
	movieRepo repository.MovieRepository
	esCfg     config.ElasticsearchConfig
}

// NewMovieService 创建一个新的 MovieService 实例。
func NewMovieService(movieRepo repository.MovieRepository, esCfg config.ElasticsearchConfig) MovieService {
	return &movieService{movieRepo: movieRepo, esCfg: esCfg}
}

// ListTitles 按语料行序返回全部标题。
func (s *movieService) ListTitles() ([]string, error) {
	titles, err := s.movieRepo.FindTitles()
	if err != nil {
		return nil, fmt.Errorf("查询标题列表失败: %w", err)
	}
	return titles, nil
}

// SearchTitles 在 Elasticsearch 标题索引上做模糊检索，供选择器自动补全。
func (s *movieService) SearchTitles(ctx context.Context, query string, size int) ([]model.MovieTitleDoc, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	docs, err := es.SearchTitles(ctx, s.esCfg.IndexName, query, size)
	if err != nil {
		log.Errorf("[MovieService] 标题检索失败, query: '%s', error: %v", query, err)
		return nil, fmt.Errorf("标题检索失败: %w", err)
	}
	return docs, nil
}
