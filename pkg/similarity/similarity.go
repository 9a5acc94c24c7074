// Package similarity 提供了稀疏向量的余弦相似度与全量两两相似度矩阵。
//
// 全量 n×n 稠密矩阵是本设计有意为之的规模上限：语料被假定在数万行以内。
// 超出该规模需要换用近似最近邻索引重新设计，而不是让这里悄悄退化。
package similarity

import "cinematch-go/pkg/tfidf"

// Cosine 计算两个稀疏向量的余弦相似度。
// 约定：零向量与任何向量的相似度为 0，而不是 NaN，避免无效值向下游传播。
func Cosine(a, b tfidf.SparseVector) float64 {
	normA := a.Norm()
	normB := b.Norm()
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot(a, b) / (normA * normB)
}

// dot 计算两个按列号升序排列的稀疏向量的点积。
func dot(a, b tfidf.SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// PairwiseMatrix 计算所有行两两之间的余弦相似度矩阵。
// 结果是对称方阵；非零行对角线为 1，全零行对角线为 0。
// 只计算上三角再镜像，对角线单独赋值，保证对称性与对角不变量精确成立。
func PairwiseMatrix(rows []tfidf.SparseVector) [][]float64 {
	n := len(rows)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		if rows[i].Norm() > 0 {
			matrix[i][i] = 1
		}
		for j := i + 1; j < n; j++ {
			sim := Cosine(rows[i], rows[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}
