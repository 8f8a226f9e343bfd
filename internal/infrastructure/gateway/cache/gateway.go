package cache

import (
	"context"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	basecache "github.com/riskibarqy/fantasy-draft/internal/platform/cache"
)

// Gateway caches the season contestant catalog in front of another gateway.
// League, member and pick reads always go to next.
type Gateway struct {
	draft.Gateway
	cache *basecache.Store
}

func NewGateway(next draft.Gateway, cache *basecache.Store) *Gateway {
	return &Gateway{Gateway: next, cache: cache}
}

func (g *Gateway) ListContestantsBySeason(ctx context.Context, seasonID string) ([]draft.Contestant, error) {
	key := "contestant:season:" + seasonID
	v, err := g.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := g.Gateway.ListContestantsBySeason(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return append([]draft.Contestant(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]draft.Contestant)
	return append([]draft.Contestant(nil), items...), nil
}
