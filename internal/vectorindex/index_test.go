package vectorindex

import (
	"path/filepath"
	"testing"

	"cinematch-go/internal/model"
	"cinematch-go/pkg/textnorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func raw(title, genres, keywords, overview string) model.RawMovieRecord {
	return model.RawMovieRecord{
		Title:    strPtr(title),
		Genres:   strPtr(genres),
		Keywords: strPtr(keywords),
		Overview: strPtr(overview),
	}
}

// 三部电影的小语料：A 与 B 共享 space/alien，A 与 C 毫无交集。
func buildSmallIndex(t *testing.T) *VectorIndex {
	t.Helper()
	raws := []model.RawMovieRecord{
		raw("Movie A", "scifi", "space alien", "crew explores deep space"),
		raw("Movie B", "scifi", "space", "alien attacks a space station"),
		raw("Movie C", "romance", "love", "two people fall in love in paris"),
	}
	idx, err := Build(raws, textnorm.New(), 0)
	require.NoError(t, err)
	return idx
}

func TestBuild_FiltersMissingFieldsAndReindexes(t *testing.T) {
	missing := model.RawMovieRecord{
		Title:  strPtr("No Overview"),
		Genres: strPtr("drama"),
		// Keywords 与 Overview 缺失
	}
	raws := []model.RawMovieRecord{
		raw("First", "action", "hero", "a hero saves the city"),
		missing,
		raw("Third", "drama", "family", "a family drama"),
	}

	idx, err := Build(raws, textnorm.New(), 0)
	require.NoError(t, err)

	// 缺失字段的行被整行丢弃，行号重排为连续下标且保持相对顺序
	require.Equal(t, 2, idx.Size())
	assert.Equal(t, "First", idx.Records[0].Title)
	assert.Equal(t, "Third", idx.Records[1].Title)

	// 三个产物行数一致
	require.NoError(t, idx.Validate())
	assert.Len(t, idx.Model.Rows, 2)
	assert.Len(t, idx.Sim, 2)
}

func TestBuild_EmptyStringSurvives(t *testing.T) {
	// 空字符串是合法值，不算缺失
	raws := []model.RawMovieRecord{
		raw("Empty Fields", "", "", ""),
	}
	idx, err := Build(raws, textnorm.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Size())
	// 归一化文本为空，对应零向量行
	assert.Equal(t, "", idx.Records[0].Normalized)
	assert.Equal(t, 0.0, idx.Sim[0][0])
}

func TestBuild_EmptyCorpus(t *testing.T) {
	raws := []model.RawMovieRecord{
		{Title: strPtr("only title")},
		{},
	}
	_, err := Build(raws, textnorm.New(), 0)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Build(nil, textnorm.New(), 0)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestResolveTitle_FirstOccurrence(t *testing.T) {
	raws := []model.RawMovieRecord{
		raw("Dup", "action", "one", "first copy"),
		raw("Other", "drama", "two", "unrelated"),
		raw("Dup", "action", "three", "second copy"),
	}
	idx, err := Build(raws, textnorm.New(), 0)
	require.NoError(t, err)

	row, found := idx.ResolveTitle("Dup")
	require.True(t, found)
	assert.Equal(t, 0, row)

	_, found = idx.ResolveTitle("Missing")
	assert.False(t, found)

	// 精确匹配，大小写敏感
	_, found = idx.ResolveTitle("dup")
	assert.False(t, found)
}

func TestTopK_RankingEndToEnd(t *testing.T) {
	idx := buildSmallIndex(t)

	rowA, found := idx.ResolveTitle("Movie A")
	require.True(t, found)
	require.Equal(t, 0, rowA)

	// A 与 B 共享词项，A 与 C 没有任何交集
	assert.Greater(t, idx.Sim[0][1], idx.Sim[0][2])
	assert.Equal(t, 0.0, idx.Sim[0][2])

	top := idx.TopK(rowA, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Movie B", idx.Records[top[0].Row].Title)
	assert.Equal(t, "Movie C", idx.Records[top[1].Row].Title)
}

func TestTopK_ExcludesSelf(t *testing.T) {
	idx := buildSmallIndex(t)

	for row := 0; row < idx.Size(); row++ {
		for _, sc := range idx.TopK(row, idx.Size()) {
			assert.NotEqual(t, row, sc.Row)
		}
	}
}

func TestTopK_Cardinality(t *testing.T) {
	idx := buildSmallIndex(t)

	// k 超过候选数时返回全部 n-1 条
	assert.Len(t, idx.TopK(0, 100), idx.Size()-1)
	assert.Len(t, idx.TopK(0, 1), 1)
	assert.Empty(t, idx.TopK(0, 0))
}

func TestTopK_TieBreakByRowOrder(t *testing.T) {
	// 三行内容完全相同：与第 0 行的相似度全部并列为 1
	raws := []model.RawMovieRecord{
		raw("Q", "scifi", "space", "same text"),
		raw("T1", "scifi", "space", "same text"),
		raw("T2", "scifi", "space", "same text"),
	}
	idx, err := Build(raws, textnorm.New(), 0)
	require.NoError(t, err)

	top := idx.TopK(0, 2)
	require.Len(t, top, 2)
	// 平局保持原始行序
	assert.Equal(t, 1, top[0].Row)
	assert.Equal(t, 2, top[1].Row)

	// 同一索引上重复调用结果逐位一致
	again := idx.TopK(0, 2)
	assert.Equal(t, top, again)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	idx := buildSmallIndex(t)
	dir := filepath.Join(t.TempDir(), "index")

	require.NoError(t, idx.Save(dir))
	require.True(t, Exists(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())

	assert.Equal(t, idx.Records, loaded.Records)
	assert.Equal(t, idx.Model.Vocabulary, loaded.Model.Vocabulary)
	assert.Equal(t, idx.Model.IDF, loaded.Model.IDF)
	assert.Equal(t, idx.Sim, loaded.Sim)

	// 加载后的索引给出与保存前完全一致的排名
	assert.Equal(t, idx.TopK(0, 2), loaded.TopK(0, 2))
}

func TestSave_ReplacesExistingIndex(t *testing.T) {
	idx := buildSmallIndex(t)
	dir := filepath.Join(t.TempDir(), "index")

	require.NoError(t, idx.Save(dir))

	// 再次保存一个不同规模的索引，整体替换
	raws := []model.RawMovieRecord{
		raw("Solo", "drama", "alone", "a single movie"),
	}
	idx2, err := Build(raws, textnorm.New(), 0)
	require.NoError(t, err)
	require.NoError(t, idx2.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Size())
}

func TestLoad_MissingArtifact(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate_Mismatch(t *testing.T) {
	idx := buildSmallIndex(t)
	require.NoError(t, idx.Validate())

	// 行数失配
	broken := *idx
	broken.Records = idx.Records[:2]
	assert.ErrorIs(t, broken.Validate(), ErrInconsistent)

	// 非方阵
	broken2 := *idx
	broken2.Sim = [][]float64{{1, 0, 0}, {0, 1}, {0, 0, 1}}
	assert.ErrorIs(t, broken2.Validate(), ErrInconsistent)

	// 缺少模型
	broken3 := *idx
	broken3.Model = nil
	assert.ErrorIs(t, broken3.Validate(), ErrInconsistent)
}
