package embedding

import (
	"context"
	"errors"
	"time"

	"dishdash/pkg/logging"
	"dishdash/pkg/metrics"
	"dishdash/pkg/vectormath"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

type cached struct {
	next Provider
	db   *badger.DB
	ttl  time.Duration
}

// WithCache serves repeated texts from badger. Keys include the provider Name,
// so vectors from different models never mix. A zero ttl keeps entries forever.
// Cache read or write failures are logged and fall through to the provider.
func WithCache(next Provider, db *badger.DB, ttl time.Duration) Provider {
	if db == nil {
		return next
	}
	return &cached{next: next, db: db, ttl: ttl}
}

func (c *cached) Name() string   { return c.next.Name() }
func (c *cached) Dimension() int { return c.next.Dimension() }

func (c *cached) Embed(ctx context.Context, text string) (vectormath.Vector, error) {
	return single(ctx, c, text)
}

func (c *cached) key(text string) []byte {
	return []byte("emb/" + c.next.Name() + "/" + text)
}

func (c *cached) EmbedBatch(ctx context.Context, texts []string) ([]vectormath.Vector, error) {
	out := make([]vectormath.Vector, len(texts))
	found := c.lookup(texts, out)

	// embed each distinct missing text once
	var missing []string
	positions := make(map[string][]int)
	for i, t := range texts {
		if found[i] {
			continue
		}
		if _, seen := positions[t]; !seen {
			missing = append(missing, t)
		}
		positions[t] = append(positions[t], i)
	}

	metrics.EmbeddingCache.WithLabelValues("hit").Add(float64(len(texts) - countMissing(found)))
	metrics.EmbeddingCache.WithLabelValues("miss").Add(float64(countMissing(found)))

	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := c.next.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if err := checkBatch(missing, vectors, c.Dimension()); err != nil {
		return nil, err
	}

	for i, t := range missing {
		for _, pos := range positions[t] {
			out[pos] = vectors[i]
		}
	}
	c.store(missing, vectors)

	return out, nil
}

func countMissing(found []bool) int {
	n := 0
	for _, f := range found {
		if !f {
			n++
		}
	}
	return n
}

func (c *cached) lookup(texts []string, out []vectormath.Vector) []bool {
	found := make([]bool, len(texts))
	err := c.db.View(func(txn *badger.Txn) error {
		for i, t := range texts {
			item, err := txn.Get(c.key(t))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			var raw []float32
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &raw)
			}); err != nil {
				return err
			}
			if len(raw) != c.Dimension() {
				continue
			}
			out[i] = vectormath.FromFloat32(raw)
			found[i] = true
		}
		return nil
	})
	if err != nil {
		logging.Warn().Err(err).Msg("embedding cache read failed")
		clear(found)
	}
	return found
}

func (c *cached) store(texts []string, vectors []vectormath.Vector) {
	err := c.db.Update(func(txn *badger.Txn) error {
		for i, t := range texts {
			val, err := json.Marshal(vectors[i].Float32())
			if err != nil {
				return err
			}
			e := badger.NewEntry(c.key(t), val)
			if c.ttl > 0 {
				e = e.WithTTL(c.ttl)
			}
			if err := txn.SetEntry(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logging.Warn().Err(err).Int("entries", len(texts)).Msg("embedding cache write failed")
	}
}
