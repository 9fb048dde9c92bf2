package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"dishdash/internal/models/db_models"
	"dishdash/pkg/embedding"
	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// fakeRestaurants is an in-memory restaurant table with score columns.
type fakeRestaurants struct {
	mu        sync.Mutex
	ids       []uuid.UUID
	images    map[uuid.UUID]bool
	scores    map[uuid.UUID]map[string]float64
	onList    func(call int)
	listCalls int
}

func newFakeRestaurants(n int) *fakeRestaurants {
	f := &fakeRestaurants{images: map[uuid.UUID]bool{}, scores: map[uuid.UUID]map[string]float64{}}
	for i := 0; i < n; i++ {
		f.ids = append(f.ids, uuid.New())
	}
	slices.SortFunc(f.ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return f
}

func (f *fakeRestaurants) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return slices.Contains(f.ids, id), nil
}

func (f *fakeRestaurants) ImageExists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.images[id], nil
}

func (f *fakeRestaurants) ListPage(_ context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	f.mu.Unlock()
	if f.onList != nil {
		f.onList(call)
	}

	var out []uuid.UUID
	for _, id := range f.ids {
		if bytes.Compare(id[:], after[:]) > 0 && len(out) < limit {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeRestaurants) GetByIDs(_ context.Context, ids []uuid.UUID) ([]db_models.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db_models.Restaurant
	for _, id := range ids {
		if !slices.Contains(f.ids, id) {
			continue
		}
		r := db_models.Restaurant{BaseModel: db_models.BaseModel{ID: id}}
		for field, v := range f.scores[id] {
			switch field {
			case "ambianceScore":
				r.AmbianceScore = &v
			case "foodQualityScore":
				r.FoodQualityScore = &v
			case "serviceScore":
				r.ServiceScore = &v
			case "valueScore":
				r.ValueScore = &v
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRestaurants) UpdateScore(_ context.Context, id uuid.UUID, field string, value float64) error {
	if _, ok := db_models.ScoreFields[field]; !ok {
		return utils.ErrUnknownScoreField
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scores[id] == nil {
		f.scores[id] = map[string]float64{}
	}
	f.scores[id][field] = value
	return nil
}

func (f *fakeRestaurants) setScore(id uuid.UUID, field string, v float64) {
	_ = f.UpdateScore(context.Background(), id, field, v)
}

func (f *fakeRestaurants) snapshot(field string) map[uuid.UUID]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]float64{}
	for id, s := range f.scores {
		if v, ok := s[field]; ok {
			out[id] = v
		}
	}
	return out
}

// fakeTags holds tags per restaurant; AggregateTags filters by category and
// deduplicates by id.
type fakeTags struct {
	mu         sync.Mutex
	byRest     map[uuid.UUID][]db_models.Tag
	categories map[string]bool
	interned   map[string]db_models.Tag
	attached   map[uuid.UUID][]db_models.Tag
}

func newFakeTags(categories ...string) *fakeTags {
	f := &fakeTags{
		byRest:     map[uuid.UUID][]db_models.Tag{},
		categories: map[string]bool{},
		interned:   map[string]db_models.Tag{},
		attached:   map[uuid.UUID][]db_models.Tag{},
	}
	for _, c := range categories {
		f.categories[c] = true
	}
	return f
}

func (f *fakeTags) add(restaurantID uuid.UUID, category string, values ...string) {
	for _, v := range values {
		tag, _ := f.GetOrCreateTag(context.Background(), v, category, db_models.TagSourceManual)
		f.byRest[restaurantID] = append(f.byRest[restaurantID], *tag)
	}
}

func (f *fakeTags) GetAllTags(_ context.Context, page, pageSize int) ([]db_models.Tag, error) {
	var out []db_models.Tag
	for _, t := range f.interned {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTags) AggregateTags(_ context.Context, ids []uuid.UUID, category string) ([]db_models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	out := []db_models.Tag{}
	for _, id := range ids {
		for _, t := range f.byRest[id] {
			if t.Category == category && !seen[t.ID] {
				seen[t.ID] = true
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeTags) GetOrCreateTag(_ context.Context, value, category, source string) (*db_models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := category + "/" + value
	if t, ok := f.interned[key]; ok {
		return &t, nil
	}
	t := db_models.Tag{BaseModel: db_models.BaseModel{ID: uuid.New()}, Value: value, Category: category, Source: source}
	f.interned[key] = t
	return &t, nil
}

func (f *fakeTags) CategoryExists(_ context.Context, category string) (bool, error) {
	return f.categories[category], nil
}

func (f *fakeTags) AttachToImage(_ context.Context, imageID uuid.UUID, tags []db_models.Tag) error {
	f.attached[imageID] = append(f.attached[imageID], tags...)
	return nil
}

type fakeVectors struct {
	mu   sync.Mutex
	rows map[string]db_models.RestaurantVector
}

func newFakeVectors() *fakeVectors {
	return &fakeVectors{rows: map[string]db_models.RestaurantVector{}}
}

func (f *fakeVectors) Upsert(_ context.Context, v db_models.RestaurantVector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[v.RestaurantID.String()+"/"+v.Category] = v
	return nil
}

func (f *fakeVectors) Delete(_ context.Context, id uuid.UUID, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id.String()+"/"+category)
	return nil
}

func (f *fakeVectors) GetByRestaurants(_ context.Context, ids []uuid.UUID, category string) ([]db_models.RestaurantVector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db_models.RestaurantVector
	for _, id := range ids {
		if v, ok := f.rows[id.String()+"/"+category]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeRuns struct {
	mu   sync.Mutex
	runs []*db_models.ScoringRun
}

func (f *fakeRuns) Create(_ context.Context, run *db_models.ScoringRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run.ID = uuid.New()
	cp := *run
	f.runs = append(f.runs, &cp)
	return nil
}

func (f *fakeRuns) Save(_ context.Context, run *db_models.ScoringRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.runs {
		if r.ID == run.ID {
			cp := *run
			f.runs[i] = &cp
			return nil
		}
	}
	return errors.New("run not found")
}

func (f *fakeRuns) ListRecent(_ context.Context, limit int) ([]db_models.ScoringRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db_models.ScoringRun
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.runs[i])
	}
	return out, nil
}

func (f *fakeRuns) last() db_models.ScoringRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.runs[len(f.runs)-1]
}

type fakeSwipes struct {
	liked map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeSwipes() *fakeSwipes {
	return &fakeSwipes{liked: map[uuid.UUID]map[uuid.UUID]bool{}}
}

func (f *fakeSwipes) Upsert(_ context.Context, s db_models.Swipe) error {
	if f.liked[s.UserID] == nil {
		f.liked[s.UserID] = map[uuid.UUID]bool{}
	}
	f.liked[s.UserID][s.RestaurantID] = s.Liked
	return nil
}

func (f *fakeSwipes) LikedRestaurantIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, liked := range f.liked[userID] {
		if liked {
			out = append(out, id)
		}
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return out, nil
}

// countingProvider embeds with the hash provider, counts texts sent and
// rejects any text listed in reject.
type countingProvider struct {
	mu     sync.Mutex
	inner  *embedding.HashProvider
	reject map[string]bool
	texts  []string
	calls  int
}

func newCountingProvider(dim int, reject ...string) *countingProvider {
	p := &countingProvider{inner: embedding.NewHashProvider(dim), reject: map[string]bool{}}
	for _, r := range reject {
		p.reject[r] = true
	}
	return p
}

func (p *countingProvider) Name() string   { return p.inner.Name() }
func (p *countingProvider) Dimension() int { return p.inner.Dimension() }

func (p *countingProvider) Embed(ctx context.Context, text string) (vectormath.Vector, error) {
	vs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (p *countingProvider) EmbedBatch(ctx context.Context, texts []string) ([]vectormath.Vector, error) {
	p.mu.Lock()
	p.calls++
	p.texts = append(p.texts, texts...)
	p.mu.Unlock()
	for _, t := range texts {
		if p.reject[t] {
			return nil, fmt.Errorf("%w: %q is not embeddable", utils.ErrProviderRejected, t)
		}
	}
	return p.inner.EmbedBatch(ctx, texts)
}

func (p *countingProvider) sent(text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.texts, text)
}

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func vectorRow(id uuid.UUID) db_models.RestaurantVector {
	return db_models.RestaurantVector{
		RestaurantID: id,
		Category:     "ambiance",
		Model:        "hash:fnv32a:16",
		TagValues:    []string{"stale"},
		Embedding:    pgvector.NewVector(make([]float32, 16)),
	}
}
