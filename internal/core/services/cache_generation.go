package services

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const generationStripes = 256

// cacheGenerations counts seat-map invalidations per instance key. Keys share
// stripes, so a collision can only make a reader skip a cache write.
type cacheGenerations struct {
	stripes [generationStripes]atomic.Uint64
}

func (g *cacheGenerations) stripe(key string) *atomic.Uint64 {
	return &g.stripes[xxhash.Sum64String(key)%generationStripes]
}

func (g *cacheGenerations) current(key string) uint64 {
	return g.stripe(key).Load()
}

func (g *cacheGenerations) bump(key string) {
	g.stripe(key).Add(1)
}
