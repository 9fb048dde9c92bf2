package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dishdash/internal/models/request_models"
	"dishdash/internal/models/response_models"
	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRanking struct {
	weights  map[string]float64
	ids      []uuid.UUID
	userID   uuid.UUID
	category string
	err      error
}

func (f *fakeRanking) RankByPreferences(_ context.Context, weights map[string]float64, ids []uuid.UUID) ([]response_models.RankedRestaurantResponse, error) {
	f.weights, f.ids = weights, ids
	if f.err != nil {
		return nil, f.err
	}
	return []response_models.RankedRestaurantResponse{{RestaurantID: ids[0].String(), Score: 62, Rank: 1}}, nil
}

func (f *fakeRanking) RankBySimilarity(_ context.Context, userID uuid.UUID, category string, ids []uuid.UUID) ([]response_models.RankedRestaurantResponse, error) {
	f.userID, f.category, f.ids = userID, category, ids
	return []response_models.RankedRestaurantResponse{}, f.err
}

type fakeProfiles struct {
	liked *bool
	err   error
}

func (f *fakeProfiles) RecordSwipe(_ context.Context, _, _ uuid.UUID, liked bool) error {
	f.liked = &liked
	return f.err
}

func (f *fakeProfiles) BuildUserVector(context.Context, uuid.UUID, string) (vectormath.Vector, error) {
	return nil, nil
}

type fakeScoring struct {
	started string
	err     error
}

func (f *fakeScoring) Start(dimension string) error {
	f.started = dimension
	return f.err
}

func (f *fakeScoring) ListRuns(_ context.Context, limit int) ([]response_models.ScoringRunResponse, error) {
	if limit > 100 {
		return nil, utils.ErrInvalidPageSize
	}
	return []response_models.ScoringRunResponse{{Dimension: "ambiance", State: "DONE"}}, nil
}

type fakeTagService struct {
	got []request_models.ImageTagRequest
	err error
}

func (f *fakeTagService) GetAllTags(context.Context, int, int) ([]response_models.TagResponse, error) {
	return []response_models.TagResponse{{Value: "cozy"}}, nil
}

func (f *fakeTagService) GetRestaurantTags(_ context.Context, _ uuid.UUID, category string) ([]response_models.TagResponse, error) {
	return []response_models.TagResponse{{Value: "cozy", Category: category}}, f.err
}

func (f *fakeTagService) AttachImageTags(_ context.Context, _ uuid.UUID, tags []request_models.ImageTagRequest) ([]response_models.TagResponse, error) {
	f.got = tags
	return nil, f.err
}

func withUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id.String())
		c.Next()
	}
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRankHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ranking := &fakeRanking{}
	rc := NewRankingController(ranking, &fakeProfiles{}, "ambiance")
	r := gin.New()
	r.POST("/restaurants/rank", rc.RankHandler)
	id := uuid.New()

	w := do(r, http.MethodPost, "/restaurants/rank", gin.H{
		"weights":       gin.H{"ambiance": 70, "foodQuality": 30},
		"restaurantIds": []string{id.String()},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]float64{"ambiance": 70, "foodQuality": 30}, ranking.weights)
	assert.Equal(t, []uuid.UUID{id}, ranking.ids)
	assert.Equal(t, "success", decode(t, w).Status)

	w = do(r, http.MethodPost, "/restaurants/rank", gin.H{
		"weights":       gin.H{"ambiance": 70},
		"restaurantIds": []string{"not-a-uuid"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/restaurants/rank", gin.H{"restaurantIds": []string{id.String()}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ranking.err = utils.ErrInvalidWeights
	w = do(r, http.MethodPost, "/restaurants/rank", gin.H{
		"weights":       gin.H{"ambiance": 1000},
		"restaurantIds": []string{id.String()},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decode(t, w).Status)
}

func TestRecommendationsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ranking := &fakeRanking{}
	rc := NewRankingController(ranking, &fakeProfiles{}, "ambiance")
	user := uuid.New()
	a, b := uuid.New(), uuid.New()

	r := gin.New()
	r.GET("/anon", rc.RecommendationsHandler)
	r.GET("/recommendations", withUser(user), rc.RecommendationsHandler)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/anon?restaurantIds="+a.String(), nil).Code)

	w := do(r, http.MethodGet, "/recommendations?restaurantIds="+a.String()+","+b.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user, ranking.userID)
	assert.Equal(t, "ambiance", ranking.category)
	assert.Equal(t, []uuid.UUID{a, b}, ranking.ids)

	do(r, http.MethodGet, "/recommendations?category=cuisine&restaurantIds="+a.String(), nil)
	assert.Equal(t, "cuisine", ranking.category)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/recommendations", nil).Code)

	ranking.err = utils.ErrDimensionMismatch
	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodGet, "/recommendations?restaurantIds="+a.String(), nil).Code)
}

func TestSwipeHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	profiles := &fakeProfiles{}
	rc := NewRankingController(&fakeRanking{}, profiles, "ambiance")
	r := gin.New()
	r.POST("/restaurants/:id/swipe", withUser(uuid.New()), rc.SwipeHandler)
	path := "/restaurants/" + uuid.New().String() + "/swipe"

	w := do(r, http.MethodPost, path, gin.H{"liked": false})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, profiles.liked)
	assert.False(t, *profiles.liked)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, path, gin.H{}).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/restaurants/x/swipe", gin.H{"liked": true}).Code)

	profiles.err = utils.ErrRestaurantNotFound
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, path, gin.H{"liked": true}).Code)
}

func TestScoringHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	scoring := &fakeScoring{}
	sc := NewScoringController(scoring)
	r := gin.New()
	r.POST("/admin/scoring/run", sc.TriggerRunHandler)
	r.GET("/admin/scoring/runs", sc.ListRunsHandler)

	req := httptest.NewRequest(http.MethodPost, "/admin/scoring/run", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "all", scoring.started)

	w = do(r, http.MethodPost, "/admin/scoring/run", gin.H{"dimension": "ambiance"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "ambiance", scoring.started)

	scoring.err = utils.ErrRunInProgress
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/admin/scoring/run", gin.H{}).Code)

	scoring.err = utils.ErrUnknownDimension
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/admin/scoring/run", gin.H{"dimension": "parking"}).Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin/scoring/runs", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/admin/scoring/runs?limit=500", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/admin/scoring/runs?limit=abc", nil).Code)
}

func TestTagHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tags := &fakeTagService{}
	tc := NewTagController(tags)
	r := gin.New()
	r.GET("/tags", tc.ListAllTagsHandler)
	r.GET("/restaurants/:id/tags", tc.RestaurantTagsHandler)
	r.POST("/images/:id/tags", tc.AttachImageTagsHandler)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/tags", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/tags?pageSize=500", nil).Code)

	rest := "/restaurants/" + uuid.New().String() + "/tags"
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, rest+"?category=ambiance", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, rest, nil).Code)

	img := "/images/" + uuid.New().String() + "/tags"
	w := do(r, http.MethodPost, img, []gin.H{{"value": "cozy", "category": "ambiance"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []request_models.ImageTagRequest{{Value: "cozy", Category: "ambiance"}}, tags.got)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, img, []gin.H{{"value": "cozy"}}).Code)

	tags.err = utils.ErrCategoryNotFound
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, img, []gin.H{{"value": "valet", "category": "parking"}}).Code)
}
