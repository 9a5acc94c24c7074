package similarity

import (
	"testing"

	"cinematch-go/pkg/tfidf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(pairs ...float64) tfidf.SparseVector {
	v := tfidf.SparseVector{}
	for i := 0; i < len(pairs); i += 2 {
		v.Indices = append(v.Indices, int(pairs[i]))
		v.Values = append(v.Values, pairs[i+1])
	}
	return v
}

func TestCosine_Basic(t *testing.T) {
	a := vec(0, 1, 1, 0)
	b := vec(0, 1)
	assert.InDelta(t, 1.0, Cosine(a, b), 1e-12)

	// 正交向量
	c := vec(1, 1)
	assert.InDelta(t, 0.0, Cosine(b, c), 1e-12)

	// 45 度
	d := vec(0, 1, 1, 1)
	assert.InDelta(t, 0.7071067811865475, Cosine(b, d), 1e-12)
}

func TestCosine_ZeroVectorConvention(t *testing.T) {
	zero := tfidf.SparseVector{}
	a := vec(0, 1)

	// 零向量与任何向量（包括自身）的相似度为 0，不是 NaN
	assert.Equal(t, 0.0, Cosine(zero, a))
	assert.Equal(t, 0.0, Cosine(a, zero))
	assert.Equal(t, 0.0, Cosine(zero, zero))
}

func TestPairwiseMatrix_SymmetryAndDiagonal(t *testing.T) {
	rows := []tfidf.SparseVector{
		vec(0, 0.6, 1, 0.8),
		vec(0, 1),
		vec(2, 1),
		{}, // 零向量行
	}
	m := PairwiseMatrix(rows)
	require.Len(t, m, 4)

	for i := range m {
		require.Len(t, m[i], 4)
		for j := range m[i] {
			assert.Equal(t, m[i][j], m[j][i], "matrix not symmetric at (%d,%d)", i, j)
		}
	}

	// 非零行对角线恰好为 1（赋值而非计算，不受浮点误差影响）
	assert.Equal(t, 1.0, m[0][0])
	assert.Equal(t, 1.0, m[1][1])
	assert.Equal(t, 1.0, m[2][2])
	// 零向量行对角线为 0
	assert.Equal(t, 0.0, m[3][3])

	// 零向量行整行为 0
	for j := range m[3] {
		assert.Equal(t, 0.0, m[3][j])
	}

	// 抽查一个非平凡值
	assert.InDelta(t, 0.6, m[0][1], 1e-12)
	assert.Equal(t, 0.0, m[0][2])
}

func TestPairwiseMatrix_Empty(t *testing.T) {
	m := PairwiseMatrix(nil)
	assert.Empty(t, m)
}
