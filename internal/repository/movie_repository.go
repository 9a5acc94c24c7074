// Package repository 提供了数据访问层的实现。
package repository

import (
	"cinematch-go/internal/model"

	"gorm.io/gorm"
)

// MovieRepository 定义了对 movies 表的数据操作接口。
// movies 表是过滤后电影表的服务副本，重建索引时整表替换。
type MovieRepository interface {
	ReplaceAll(movies []*model.Movie) error
	FindAllOrdered() ([]*model.Movie, error)
	FindTitles() ([]string, error)
	Count() (int64, error)
}

type movieRepository struct {
	db *gorm.DB
}

// NewMovieRepository 创建一个新的 MovieRepository 实例。
func NewMovieRepository(db *gorm.DB) MovieRepository {
	return &movieRepository{db: db}
}

// ReplaceAll 在一个事务内用新的记录集整体替换 movies 表。
// 不做增量更新：行号是连接键，必须与新索引严格一致。
func (r *movieRepository) ReplaceAll(movies []*model.Movie) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Movie{}).Error; err != nil {
			return err
		}
		if len(movies) == 0 {
			return nil
		}
		return tx.CreateInBatches(movies, 500).Error
	})
}

// FindAllOrdered 按 row_idx 升序返回全部电影记录。
func (r *movieRepository) FindAllOrdered() ([]*model.Movie, error) {
	var movies []*model.Movie
	err := r.db.Order("row_idx asc").Find(&movies).Error
	return movies, err
}

// FindTitles 按 row_idx 升序返回全部标题，供选择器列表使用。
func (r *movieRepository) FindTitles() ([]string, error) {
	var titles []string
	err := r.db.Model(&model.Movie{}).Order("row_idx asc").Pluck("title", &titles).Error
	return titles, err
}

// Count 返回 movies 表的行数。
func (r *movieRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Movie{}).Count(&count).Error
	return count, err
}
