package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clanhub-backend/internal/domain"
)

func SeedClan(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Clan {
	tb.Helper()
	c := &types.Clan{
		ID:   uuid.New(),
		Name: name + "-" + uuid.NewString()[:8],
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed clan: %v", err)
	}
	return c
}

// SeedCharacter creates a clan member. gameID may be nil for characters that
// were never linked to an in-game id.
func SeedCharacter(tb testing.TB, ctx context.Context, tx *gorm.DB, clanID uuid.UUID, name string, gameID *int64) *types.Character {
	tb.Helper()
	cid := clanID
	c := &types.Character{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ClanID:     &cid,
		Name:       name,
		Class:      "Warrior",
		GameCharID: gameID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed character: %v", err)
	}
	return c
}

func SeedWeeklyContext(tb testing.TB, ctx context.Context, tx *gorm.DB, clanID uuid.UUID, weekIso string, start time.Time) (*types.ClanWeeklyContext, *types.ClanHall) {
	tb.Helper()
	wc := &types.ClanWeeklyContext{
		ID:        uuid.New(),
		ClanID:    clanID,
		WeekIso:   weekIso,
		DateStart: start.UTC(),
		DateEnd:   start.UTC().AddDate(0, 0, 7).Add(-time.Millisecond),
	}
	if err := tx.WithContext(ctx).Create(wc).Error; err != nil {
		tb.Fatalf("seed weekly context: %v", err)
	}
	hall := &types.ClanHall{ID: uuid.New(), ContextID: wc.ID}
	if err := tx.WithContext(ctx).Create(hall).Error; err != nil {
		tb.Fatalf("seed clan hall: %v", err)
	}
	return wc, hall
}
