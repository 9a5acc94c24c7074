// Package model 定义了与数据库表对应的 Go 结构体以及对外的 DTO。
package model

// Movie 对应于数据库中的 movies 表，是过滤后电影表的服务副本。
// row_idx 是语料中的位置下标，也是与文档-词项矩阵、相似度矩阵之间的连接键。
// 索引一旦建成，row_idx 顺序不可变，重建时整表替换。
type Movie struct {
	RowIdx   int    `gorm:"primaryKey;autoIncrement:false;column:row_idx" json:"rowIdx"`
	Title    string `gorm:"type:varchar(255);not null;index;column:title" json:"title"`
	Genres   string `gorm:"type:text;column:genres" json:"genres"`
	Keywords string `gorm:"type:text;column:keywords" json:"keywords"`
	Overview string `gorm:"type:text;column:overview" json:"overview"`
}

func (Movie) TableName() string {
	return "movies"
}

// RawMovieRecord 是原始数据集中的一行，字段用指针表达"值缺失"。
// 注意：空字符串不算缺失，只有列本身不存在才算（与数据源的 dropna 语义对齐）。
type RawMovieRecord struct {
	Title    *string
	Genres   *string
	Keywords *string
	Overview *string
}

// MovieTitleDoc 是存储在 Elasticsearch 标题索引中的文档结构。
type MovieTitleDoc struct {
	RowIdx int    `json:"row_idx"`
	Title  string `json:"title"`
	Genres string `json:"genres"`
}

// RecommendationDTO 定义了返回给前端的单条推荐结果。
type RecommendationDTO struct {
	RowIdx   int     `json:"rowIdx"`
	Title    string  `json:"title"`
	Genres   string  `json:"genres"`
	Keywords string  `json:"keywords"`
	Overview string  `json:"overview"`
	Score    float64 `json:"score"`
	Plot     string  `json:"plot"`
	Poster   string  `json:"poster"`
}

// IndexStatusDTO 描述当前向量索引的状态，供管理端查询。
type IndexStatusDTO struct {
	Ready     bool   `json:"ready"`
	Rows      int    `json:"rows"`
	VocabSize int    `json:"vocabSize"`
	BuiltAt   string `json:"builtAt"`
}
