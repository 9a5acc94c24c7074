// Package tfidf 实现了 TF-IDF（词频-逆文档频率）向量化。
//
// 加权方式必须与下游余弦相似度的预期严格一致：
// 词频取原始计数，IDF 采用平滑形式 idf(t) = ln((1+n)/(1+df(t))) + 1，
// 每个文档行做 L2 归一化。更换任何一项都会改变推荐排序。
package tfidf

import (
	"math"
	"sort"
	"strings"
)

// SparseVector 是一行稀疏的文档-词项向量。
// Indices 为升序的词表列号，Values 为对应的权重。
type SparseVector struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// Norm 返回向量的 L2 范数。
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Model 是拟合后的向量化模型。
// 词表（term -> 列号）必须随模型一起保留：对失配词表的查询是致命的不一致。
type Model struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Rows       []SparseVector `json:"rows"`
}

// Fit 在整个语料上拟合 TF-IDF 模型。
// docs 中的每个元素应当是已归一化的文本（小写 ASCII 字母 + 单空格）。
// maxFeatures 限制词表规模：按语料范围的总词频取前 N 个词项；
// 语料词表小于 N 时全部保留。
func Fit(docs []string, maxFeatures int) *Model {
	n := len(docs)
	tokenized := make([][]string, n)
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		toks := strings.Fields(doc)
		tokenized[i] = toks
		seen := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			corpusFreq[t]++
			seen[t] = struct{}{}
		}
		for t := range seen {
			docFreq[t]++
		}
	}

	// 按语料总词频选取词表，平局时按字典序保证确定性
	terms := make([]string, 0, len(corpusFreq))
	for t := range corpusFreq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(a, b int) bool {
		if corpusFreq[terms[a]] != corpusFreq[terms[b]] {
			return corpusFreq[terms[a]] > corpusFreq[terms[b]]
		}
		return terms[a] < terms[b]
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	// 列号按字典序分配，与词频无关
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for col, t := range terms {
		vocab[t] = col
	}

	// 平滑 IDF
	idf := make([]float64, len(terms))
	for t, col := range vocab {
		idf[col] = math.Log(float64(1+n)/float64(1+docFreq[t])) + 1
	}

	m := &Model{Vocabulary: vocab, IDF: idf, Rows: make([]SparseVector, n)}
	for i, toks := range tokenized {
		m.Rows[i] = m.weigh(toks)
	}
	return m
}

// Transform 用已拟合的词表将一个归一化文档转换为 L2 归一化的 TF-IDF 行。
// 不在词表中的词项被忽略。
func (m *Model) Transform(doc string) SparseVector {
	return m.weigh(strings.Fields(doc))
}

// weigh 计算原始词频 * IDF 并做 L2 归一化。
func (m *Model) weigh(tokens []string) SparseVector {
	counts := make(map[int]int)
	for _, t := range tokens {
		if col, ok := m.Vocabulary[t]; ok {
			counts[col]++
		}
	}

	indices := make([]int, 0, len(counts))
	for col := range counts {
		indices = append(indices, col)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var sumSq float64
	for i, col := range indices {
		w := float64(counts[col]) * m.IDF[col]
		values[i] = w
		sumSq += w * w
	}

	// L2 行归一化；全零行（没有任何词表词项的退化文档）保持为零
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for i := range values {
			values[i] /= norm
		}
	}
	return SparseVector{Indices: indices, Values: values}
}

// VocabSize 返回词表规模。
func (m *Model) VocabSize() int {
	return len(m.Vocabulary)
}
