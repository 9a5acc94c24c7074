package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_CharsetAndCase(t *testing.T) {
	n := NewWithStopwords(nil)

	// 数字、标点、Unicode 符号全部丢弃，字母转小写
	assert.Equal(t, "scifi thriller", n.Normalize("Sci-Fi 2049: Thriller!"))
	assert.Equal(t, "caf noir", n.Normalize("Café Noir…"))
	assert.Equal(t, "a b c", n.Normalize("A\tB\nC"))
}

func TestNormalize_StopwordFiltering(t *testing.T) {
	n := New()

	// 内置停用词表包含 the/of/and 等常见英文虚词
	assert.Equal(t, "king rings", n.Normalize("The King of the Rings"))
	// 停用词匹配发生在小写化之后
	assert.Equal(t, "movie", n.Normalize("THE Movie AND"))
}

func TestNormalize_EmptyAndDegenerate(t *testing.T) {
	n := New()

	assert.Equal(t, "", n.Normalize(""))
	// 全部字符被剔除
	assert.Equal(t, "", n.Normalize("2049 !!! ***"))
	// 全部 token 都是停用词
	assert.Equal(t, "", n.Normalize("the and of"))
	// 只有空白
	assert.Equal(t, "", n.Normalize("   \t\n  "))
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New()

	once := n.Normalize("Action-packed Adventure, in SPACE (2049)!")
	twice := n.Normalize(once)
	assert.Equal(t, once, twice)
}

func TestNormalize_SingleSpaceJoin(t *testing.T) {
	n := NewWithStopwords(nil)

	assert.Equal(t, "alpha beta gamma", n.Normalize("  alpha   beta\t\tgamma  "))
}
