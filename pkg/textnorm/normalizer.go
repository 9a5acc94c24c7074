// Package textnorm 提供了电影文本元数据的归一化处理。
// 归一化是纯函数：相同输入永远产生相同输出，与语料上下文无关。
package textnorm

import (
	_ "embed"
	"strings"
)

// 内置的通用英文停用词表。作为外部语言资源，在 New 中一次性显式初始化，
// 而不是在归一化过程中惰性加载，以保证可复现性。
//
//go:embed stopwords_en.txt
var defaultStopwordsRaw string

// Normalizer 将原始自由文本转换为适合词频加权的归一化 token 序列。
type Normalizer struct {
	stopwords map[string]struct{}
}

// New 创建一个使用内置英文停用词表的 Normalizer。
func New() *Normalizer {
	return NewWithStopwords(strings.Fields(defaultStopwordsRaw))
}

// NewWithStopwords 创建一个使用指定停用词表的 Normalizer。
func NewWithStopwords(words []string) *Normalizer {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopwords: set}
}

// Normalize 归一化一段原始文本：
//  1. 剔除所有非 ASCII 字母且非空白的字符（数字、标点、Unicode 符号全部丢弃）
//  2. 转为小写
//  3. 按空白切分为 token
//  4. 过滤停用词
//  5. 以单个空格拼接
//
// 空输入或归一化后没有任何 token 时返回空字符串，这不是错误。
func (n *Normalizer) Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v':
			b.WriteRune(' ')
		}
		// 其余字符一律丢弃
	}

	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, isStop := n.stopwords[tok]; !isStop {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}
