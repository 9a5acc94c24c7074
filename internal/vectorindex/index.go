// Package vectorindex 定义了内容相似度推荐的核心产物 VectorIndex：
// 过滤后的电影表、文档-词项矩阵、全量两两相似度矩阵三元组。
//
// VectorIndex 由语料构建器一次性整体创建，在推荐进程的生命周期内只读；
// 数据集变化时整体替换（rebuild-then-swap），绝不原地修改。
package vectorindex

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cinematch-go/internal/model"
	"cinematch-go/pkg/similarity"
	"cinematch-go/pkg/textnorm"
	"cinematch-go/pkg/tfidf"
)

// ErrEmptyCorpus 表示必填字段过滤后没有任何记录存活，无语料可索引。
var ErrEmptyCorpus = errors.New("过滤后语料为空，没有可索引的记录")

// ErrInconsistent 表示三个产物的行数或词表不一致，索引不可用。
var ErrInconsistent = errors.New("向量索引产物不一致")

// Record 是过滤后语料中的一条电影记录。
// 行的身份就是它在 Records 中的位置下标，该下标同时是
// 文档-词项矩阵与相似度矩阵的行号。
type Record struct {
	Title    string `json:"title"`
	Genres   string `json:"genres"`
	Keywords string `json:"keywords"`
	Overview string `json:"overview"`
	// Normalized 是 genres/keywords/overview 按固定顺序拼接后的归一化文本
	Normalized string `json:"normalized"`
}

// Scored 是一条带相似度得分的行引用。
type Scored struct {
	Row   int
	Score float64
}

// VectorIndex 是持久化的推荐索引三元组。
// 不变量：len(Records) == len(Model.Rows) == len(Sim) == len(Sim[i])。
type VectorIndex struct {
	Records []Record
	Model   *tfidf.Model
	Sim     [][]float64
	BuiltAt time.Time
}

// Build 从原始记录构建一个完整的 VectorIndex。
//
//  1. 投影出四个必填字段，任一字段缺失（值不存在，空串不算）则整行丢弃
//  2. 行号重排为从 0 开始的连续下标，保留存活记录的相对顺序
//  3. 拼接 genres/keywords/overview 并归一化
//  4. 在全部归一化文本上拟合 TF-IDF（词表上限 maxFeatures）
//  5. 计算全量两两余弦相似度矩阵
//
// 过滤后没有记录存活时返回 ErrEmptyCorpus，不产出部分结果。
func Build(raws []model.RawMovieRecord, norm *textnorm.Normalizer, maxFeatures int) (*VectorIndex, error) {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		if raw.Title == nil || raw.Genres == nil || raw.Keywords == nil || raw.Overview == nil {
			continue
		}
		combined := strings.Join([]string{*raw.Genres, *raw.Keywords, *raw.Overview}, " ")
		records = append(records, Record{
			Title:      *raw.Title,
			Genres:     *raw.Genres,
			Keywords:   *raw.Keywords,
			Overview:   *raw.Overview,
			Normalized: norm.Normalize(combined),
		})
	}
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}

	docs := make([]string, len(records))
	for i, rec := range records {
		docs[i] = rec.Normalized
	}

	m := tfidf.Fit(docs, maxFeatures)
	sim := similarity.PairwiseMatrix(m.Rows)

	return &VectorIndex{
		Records: records,
		Model:   m,
		Sim:     sim,
		BuiltAt: time.Now(),
	}, nil
}

// Validate 校验三个产物之间的行数与词表一致性。
// 对失配产物的查询是致命的不一致，加载时必须先通过校验。
func (idx *VectorIndex) Validate() error {
	n := len(idx.Records)
	if idx.Model == nil {
		return fmt.Errorf("%w: 缺少 TF-IDF 模型", ErrInconsistent)
	}
	if len(idx.Model.Rows) != n {
		return fmt.Errorf("%w: 记录数 %d 与文档-词项矩阵行数 %d 不一致", ErrInconsistent, n, len(idx.Model.Rows))
	}
	if len(idx.Sim) != n {
		return fmt.Errorf("%w: 记录数 %d 与相似度矩阵行数 %d 不一致", ErrInconsistent, n, len(idx.Sim))
	}
	for i, row := range idx.Sim {
		if len(row) != n {
			return fmt.Errorf("%w: 相似度矩阵第 %d 行列数 %d 不是方阵", ErrInconsistent, i, len(row))
		}
	}
	if len(idx.Model.Vocabulary) != len(idx.Model.IDF) {
		return fmt.Errorf("%w: 词表规模 %d 与 IDF 长度 %d 不一致", ErrInconsistent, len(idx.Model.Vocabulary), len(idx.Model.IDF))
	}
	return nil
}

// ResolveTitle 按标题精确匹配解析行号。
// 标题在原始数据中不保证唯一，重复时取首次出现的行（已知限制，策略固定为 first-occurrence）。
func (idx *VectorIndex) ResolveTitle(title string) (int, bool) {
	for i, rec := range idx.Records {
		if rec.Title == title {
			return i, true
		}
	}
	return 0, false
}

// TopK 读取 row 行的预计算相似度向量，对其余所有行按相似度降序排名，
// 返回前 k 个（不含 row 自身）。语料中其余行不足 k 时全部返回。
// 平局时保持原始行序（较小行号在前），保证同一索引上的结果可复现。
func (idx *VectorIndex) TopK(row, k int) []Scored {
	simRow := idx.Sim[row]
	candidates := make([]Scored, 0, len(simRow)-1)
	for i, score := range simRow {
		if i == row {
			continue
		}
		candidates = append(candidates, Scored{Row: i, Score: score})
	}

	// 插入顺序即行序，稳定排序天然实现"平局保持原始行序"
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}

// Size 返回语料行数。
func (idx *VectorIndex) Size() int {
	return len(idx.Records)
}
