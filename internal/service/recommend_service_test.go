package service

import (
	"context"
	"sync"
	"testing"

	"cinematch-go/internal/model"
	"cinematch-go/internal/vectorindex"
	"cinematch-go/pkg/omdb"
	"cinematch-go/pkg/textnorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMetadataCache 是一个进程内的元数据缓存桩。
type stubMetadataCache struct {
	mu    sync.Mutex
	store map[string]omdb.Details
}

func newStubMetadataCache() *stubMetadataCache {
	return &stubMetadataCache{store: make(map[string]omdb.Details)}
}

func (s *stubMetadataCache) Get(ctx context.Context, title string) (*omdb.Details, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.store[title]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *stubMetadataCache) Set(ctx context.Context, title string, details omdb.Details) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[title] = details
	return nil
}

// stubOMDbClient 返回预置的元数据；未预置的标题返回哨兵值。
type stubOMDbClient struct {
	mu      sync.Mutex
	details map[string]omdb.Details
	calls   int
}

func (s *stubOMDbClient) GetMovieDetails(ctx context.Context, title string) omdb.Details {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if d, ok := s.details[title]; ok {
		return d
	}
	return omdb.Details{Plot: omdb.NotAvailable, Poster: omdb.NotAvailable}
}

func strPtr(s string) *string { return &s }

func buildTestIndex(t *testing.T) *vectorindex.VectorIndex {
	t.Helper()
	raw := func(title, genres, keywords, overview string) model.RawMovieRecord {
		return model.RawMovieRecord{
			Title:    strPtr(title),
			Genres:   strPtr(genres),
			Keywords: strPtr(keywords),
			Overview: strPtr(overview),
		}
	}
	idx, err := vectorindex.Build([]model.RawMovieRecord{
		raw("Movie A", "scifi", "space alien", "crew explores deep space"),
		raw("Movie B", "scifi", "space", "alien attacks a space station"),
		raw("Movie C", "romance", "love", "two people fall in love in paris"),
	}, textnorm.New(), 0)
	require.NoError(t, err)
	return idx
}

func newTestService(t *testing.T, omdbClient omdb.Client) RecommendService {
	t.Helper()
	return NewRecommendService(buildTestIndex(t), newStubMetadataCache(), omdbClient, 5)
}

func TestRecommend_IndexNotReady(t *testing.T) {
	svc := NewRecommendService(nil, newStubMetadataCache(), &stubOMDbClient{}, 5)

	_, err := svc.Recommend(context.Background(), "Movie A", 2)
	assert.ErrorIs(t, err, ErrIndexNotReady)

	status := svc.Status()
	assert.False(t, status.Ready)
}

func TestRecommend_UnknownTitleReturnsEmpty(t *testing.T) {
	svc := newTestService(t, &stubOMDbClient{})

	results, err := svc.Recommend(context.Background(), "No Such Movie", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestRecommend_RankingOrder(t *testing.T) {
	svc := newTestService(t, &stubOMDbClient{})

	results, err := svc.Recommend(context.Background(), "Movie A", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Movie B", results[0].Title)
	assert.Equal(t, "Movie C", results[1].Title)
	assert.Greater(t, results[0].Score, results[1].Score)
	// 查询标题自身绝不出现在结果中
	for _, r := range results {
		assert.NotEqual(t, "Movie A", r.Title)
	}
}

func TestRecommend_KClampedToCorpus(t *testing.T) {
	svc := newTestService(t, &stubOMDbClient{})

	// k 超过语料规模时返回全部 n-1 条
	results, err := svc.Recommend(context.Background(), "Movie A", 100)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// k <= 0 时使用默认值
	results, err = svc.Recommend(context.Background(), "Movie A", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRecommend_EnrichmentSuccess(t *testing.T) {
	client := &stubOMDbClient{details: map[string]omdb.Details{
		"Movie B": {Plot: "Aliens attack.", Poster: "http://img/b.jpg"},
	}}
	svc := newTestService(t, client)

	results, err := svc.Recommend(context.Background(), "Movie A", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Aliens attack.", results[0].Plot)
	assert.Equal(t, "http://img/b.jpg", results[0].Poster)
	// 未预置的标题拿到哨兵值
	assert.Equal(t, omdb.NotAvailable, results[1].Plot)
	assert.Equal(t, omdb.NotAvailable, results[1].Poster)
}

func TestRecommend_AllLookupsFailStillRanked(t *testing.T) {
	// 所有外部查询都失败：排名完整返回，每条都是哨兵元数据
	svc := newTestService(t, &stubOMDbClient{})

	results, err := svc.Recommend(context.Background(), "Movie A", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, omdb.NotAvailable, r.Plot)
		assert.Equal(t, omdb.NotAvailable, r.Poster)
		assert.NotEmpty(t, r.Title)
	}
}

func TestEnrich_CacheHitSkipsLookup(t *testing.T) {
	cache := newStubMetadataCache()
	require.NoError(t, cache.Set(context.Background(), "Movie B",
		omdb.Details{Plot: "cached plot", Poster: "cached poster"}))

	client := &stubOMDbClient{}
	svc := NewRecommendService(buildTestIndex(t), cache, client, 5)

	dto := model.RecommendationDTO{Title: "Movie B"}
	svc.Enrich(context.Background(), &dto)

	assert.Equal(t, "cached plot", dto.Plot)
	assert.Equal(t, "cached poster", dto.Poster)
	assert.Equal(t, 0, client.calls)
}

func TestEnrich_SentinelNotCached(t *testing.T) {
	cache := newStubMetadataCache()
	client := &stubOMDbClient{}
	svc := NewRecommendService(buildTestIndex(t), cache, client, 5)

	dto := model.RecommendationDTO{Title: "Movie B"}
	svc.Enrich(context.Background(), &dto)
	assert.Equal(t, omdb.NotAvailable, dto.Plot)

	// 哨兵结果不写缓存，再次查询会重新发起外部请求
	svc.Enrich(context.Background(), &dto)
	assert.Equal(t, 2, client.calls)
	assert.Empty(t, cache.store)
}

func TestSwapIndex_UpdatesStatus(t *testing.T) {
	svc := NewRecommendService(nil, newStubMetadataCache(), &stubOMDbClient{}, 5)
	assert.False(t, svc.Status().Ready)

	idx := buildTestIndex(t)
	svc.SwapIndex(idx)

	status := svc.Status()
	assert.True(t, status.Ready)
	assert.Equal(t, 3, status.Rows)
	assert.Equal(t, idx.Model.VocabSize(), status.VocabSize)
	assert.NotEmpty(t, status.BuiltAt)

	// 替换后立即可服务
	results, err := svc.Recommend(context.Background(), "Movie A", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
