package scheduling

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	date     Date
	version  int64
	timezone string
	duration int
	step     int
}

// CachedGenerator memoizes Generate. Templates are immutable per version, so
// (date, version, duration, step) identifies the output.
type CachedGenerator struct {
	cache *lru.Cache[cacheKey, []Slot]
}

// NewCachedGenerator returns a generator holding up to size results. A size
// of zero disables caching.
func NewCachedGenerator(size int) (*CachedGenerator, error) {
	if size <= 0 {
		return &CachedGenerator{}, nil
	}
	cache, err := lru.New[cacheKey, []Slot](size)
	if err != nil {
		return nil, err
	}
	return &CachedGenerator{cache: cache}, nil
}

// Generate returns a fresh copy of the slots so callers may modify them.
func (g *CachedGenerator) Generate(date Date, tpl WeeklyTemplate, durationMinutes, stepMinutes int) ([]Slot, error) {
	if g == nil || g.cache == nil {
		return Generate(date, tpl, durationMinutes, stepMinutes)
	}

	key := cacheKey{
		date:     date,
		version:  tpl.Version,
		timezone: tpl.Timezone,
		duration: durationMinutes,
		step:     stepMinutes,
	}
	if slots, ok := g.cache.Get(key); ok {
		return slices.Clone(slots), nil
	}

	slots, err := Generate(date, tpl, durationMinutes, stepMinutes)
	if err != nil {
		return nil, err
	}
	g.cache.Add(key, slots)
	return slices.Clone(slots), nil
}

// Purge drops every cached result.
func (g *CachedGenerator) Purge() {
	if g != nil && g.cache != nil {
		g.cache.Purge()
	}
}

func (g *CachedGenerator) Len() int {
	if g == nil || g.cache == nil {
		return 0
	}
	return g.cache.Len()
}
