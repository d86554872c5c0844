package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_sync/internal/api"
	"campus_sync/internal/domain"
	"campus_sync/internal/reconcile"
)

type fakeCards struct {
	cards    []domain.ContentCard
	allCalls int
	err      error
}

func (f *fakeCards) GetInCategory(_ context.Context, id, category string) (*domain.ContentCard, error) {
	for _, c := range f.cards {
		if c.ID == id && c.Category == category {
			return &c, nil
		}
	}
	return nil, f.err
}

func (f *fakeCards) All(_ context.Context, filter domain.CardFilter) ([]domain.ContentCard, error) {
	f.allCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.ContentCard
	for _, c := range f.cards {
		if c.Category == filter.Category && (c.Published || filter.IncludeUnpublished) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCards) ListCategories(context.Context) ([]string, error) {
	return []string{"centers", "news"}, f.err
}

type fakeVideos struct {
	videos []domain.Video
	all    bool
}

func (f *fakeVideos) All(_ context.Context, includeUnpublished bool) ([]domain.Video, error) {
	f.all = includeUnpublished
	return f.videos, nil
}

func (f *fakeVideos) ListCategories(context.Context) ([]string, error) {
	return nil, nil
}

type fakeSyncer struct {
	card   *domain.ContentCard
	action reconcile.Action
	stats  *domain.SyncStats
	err    error
}

func (f *fakeSyncer) SyncSource(_ context.Context, id string) (*domain.SyncStats, error) {
	if f.stats == nil {
		return nil, f.err
	}
	return f.stats, f.err
}

func (f *fakeSyncer) Resync(context.Context, string, string) (*domain.ContentCard, reconcile.Action, error) {
	return f.card, f.action, f.err
}

type fixture struct {
	cards  *fakeCards
	videos *fakeVideos
	syncer *fakeSyncer
	cache  *api.CardCache
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cache, err := api.NewCardCache(16, time.Minute)
	require.NoError(t, err)

	f := &fixture{
		cards: &fakeCards{cards: []domain.ContentCard{
			{ID: "news_1", Title: domain.Plain("Перша"), Category: "news", Published: true},
			{ID: "news_2", Title: domain.Plain("Чернетка"), Category: "news"},
		}},
		videos: &fakeVideos{},
		syncer: &fakeSyncer{},
		cache:  cache,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.router = api.NewRouter(api.NewHandler(f.cards, f.videos, f.syncer, cache, logger), logger)
	return f
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, path, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestListCards_PublishedOnlyByDefault(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/cards/news")
	require.Equal(t, http.StatusOK, w.Code)

	var cards []domain.ContentCard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "news_1", cards[0].ID)

	w = f.do(t, http.MethodGet, "/api/cards/news?all=true")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cards))
	assert.Len(t, cards, 2)
}

func TestListCards_ServedFromCache(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodGet, "/api/cards/news")
	f.do(t, http.MethodGet, "/api/cards/news")
	assert.Equal(t, 1, f.cards.allCalls)

	// a sync write to the category drops the cached listing
	require.NoError(t, f.cache.Publish(context.Background(), &domain.ContentCard{ID: "news_3", Category: "news"}, true))
	f.do(t, http.MethodGet, "/api/cards/news")
	assert.Equal(t, 2, f.cards.allCalls)

	// writes elsewhere leave it alone
	require.NoError(t, f.cache.Publish(context.Background(), &domain.ContentCard{ID: "centers_1", Category: "centers"}, false))
	f.do(t, http.MethodGet, "/api/cards/news")
	assert.Equal(t, 2, f.cards.allCalls)
}

func TestListCards_EmptyCategoryIsEmptyArray(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/cards/unknown")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListCards_BadQuery(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/cards/news?limit=-1").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/cards/news?all=maybe").Code)
	assert.Equal(t, 0, f.cards.allCalls)
}

func TestListCards_StoreError(t *testing.T) {
	f := newFixture(t)
	f.cards.err = errors.New("connection refused")

	w := f.do(t, http.MethodGet, "/api/cards/news")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGetCard(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/cards/news/news_1").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/cards/centers/news_1").Code)
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/cards")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":["centers","news"]}`, w.Body.String())
}

func TestResyncCard_Success(t *testing.T) {
	f := newFixture(t)
	f.syncer.card = &domain.ContentCard{ID: "news_1", Title: domain.Plain("Оновлено"), Category: "news"}
	f.syncer.action = reconcile.Update

	w := f.do(t, http.MethodPost, "/api/cards/news/news_1/sync")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Action string             `json:"action"`
		Card   domain.ContentCard `json:"card"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "update", body.Action)
	assert.Equal(t, "Оновлено", body.Card.Title.UA)
}

func TestResyncCard_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"manual card", domain.ErrMissingResource, http.StatusBadRequest},
		{"unknown source", domain.ErrUnknownSource, http.StatusUnprocessableEntity},
		{"not upstream", domain.ErrNotUpstream, http.StatusUnprocessableEntity},
		{"upstream status", &domain.FetchError{URL: "https://vsau.org/x", StatusCode: 503}, http.StatusBadGateway},
		{"network", &domain.NetworkError{URL: "https://vsau.org/x", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"store", &domain.PersistenceError{Op: "update", ID: "news_1", Err: errors.New("deadlock")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.syncer.err = tt.err

			w := f.do(t, http.MethodPost, "/api/cards/news/news_1/sync")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestResyncCard_ManualCardMessage(t *testing.T) {
	f := newFixture(t)
	f.syncer.err = domain.ErrMissingResource

	w := f.do(t, http.MethodPost, "/api/cards/faculties/faculties_1/sync")
	assert.JSONEq(t, `{"error":"this item was added manually, cannot be synced"}`, w.Body.String())
}

func TestTriggerSource(t *testing.T) {
	f := newFixture(t)
	f.syncer.stats = &domain.SyncStats{SourceID: "news", Fetched: 3, New: 1}

	w := f.do(t, http.MethodPost, "/api/sync/news")
	require.Equal(t, http.StatusOK, w.Code)

	var stats domain.SyncStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.New)
}

func TestTriggerSource_Errors(t *testing.T) {
	f := newFixture(t)

	f.syncer.err = domain.ErrUnknownSource
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/sync/videos").Code)

	f.syncer.err = &domain.FetchError{URL: "https://vsau.org/novini", StatusCode: 500}
	assert.Equal(t, http.StatusBadGateway, f.do(t, http.MethodPost, "/api/sync/news").Code)

	f.syncer.err = errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, f.do(t, http.MethodPost, "/api/sync/news").Code)
}

func TestListVideos(t *testing.T) {
	f := newFixture(t)
	f.videos.videos = []domain.Video{{ID: "v1", Src: "https://youtube.com/embed/1"}}

	w := f.do(t, http.MethodGet, "/api/videos?all=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.videos.all)

	w = f.do(t, http.MethodGet, "/api/videos/categories")
	assert.JSONEq(t, `{"categories":[]}`, w.Body.String())
}
