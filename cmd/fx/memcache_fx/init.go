package memcache_fx

import (
	mem "dishdash/pkg/memcache"

	"go.uber.org/fx"
)

var Module = fx.Provide(provideVectorCache)

func provideVectorCache() mem.VectorStore {
	return mem.NewVectorCache()
}
