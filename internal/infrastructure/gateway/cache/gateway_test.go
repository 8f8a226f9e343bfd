package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	draftmock "github.com/riskibarqy/fantasy-draft/internal/mocks/domain/draft"
	basecache "github.com/riskibarqy/fantasy-draft/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func TestGateway_ListContestantsBySeasonCachesPerSeason(t *testing.T) {
	ctx := context.Background()
	next := draftmock.NewGateway(t)
	next.On("ListContestantsBySeason", mock.Anything, "s1").
		Return([]draft.Contestant{{ID: "c1", SeasonID: "s1", Name: "Anya"}}, nil).Once()
	next.On("ListContestantsBySeason", mock.Anything, "s2").
		Return([]draft.Contestant{}, nil).Once()

	gw := NewGateway(next, basecache.NewStore(time.Minute))

	for range 3 {
		items, err := gw.ListContestantsBySeason(ctx, "s1")
		if err != nil {
			t.Fatalf("list contestants: %v", err)
		}
		if len(items) != 1 || items[0].ID != "c1" {
			t.Fatalf("unexpected contestants: %+v", items)
		}
		items[0].Name = "mutated"
	}
	if _, err := gw.ListContestantsBySeason(ctx, "s2"); err != nil {
		t.Fatalf("list contestants s2: %v", err)
	}
}

func TestGateway_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	next := draftmock.NewGateway(t)
	next.On("ListContestantsBySeason", mock.Anything, "s1").Return(nil, errors.New("boom")).Once()
	next.On("ListContestantsBySeason", mock.Anything, "s1").
		Return([]draft.Contestant{{ID: "c1", SeasonID: "s1"}}, nil).Once()

	gw := NewGateway(next, basecache.NewStore(time.Minute))

	if _, err := gw.ListContestantsBySeason(ctx, "s1"); err == nil {
		t.Fatalf("expected load error")
	}
	items, err := gw.ListContestantsBySeason(ctx, "s1")
	if err != nil || len(items) != 1 {
		t.Fatalf("expected retry to load, got %+v %v", items, err)
	}
}

func TestGateway_PassesThroughOtherReads(t *testing.T) {
	ctx := context.Background()
	next := draftmock.NewGateway(t)
	next.On("CountPicks", mock.Anything, "league-1").Return(4, nil).Twice()

	gw := NewGateway(next, basecache.NewStore(time.Minute))
	for range 2 {
		n, err := gw.CountPicks(ctx, "league-1")
		if err != nil || n != 4 {
			t.Fatalf("unexpected count: %d %v", n, err)
		}
	}
}
