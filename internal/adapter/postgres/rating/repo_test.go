package rating_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/resolvehub/trustengine-backend/internal/adapter/postgres/rating"
	"github.com/resolvehub/trustengine-backend/internal/adapter/postgres/testhelper"
)

func newRepo(t *testing.T) (*rating.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return rating.New(pool, clockwork.NewRealClock()), pool
}

func TestRepo_GetSamples_OldestFirst(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()
	brandID := uuid.New()

	testhelper.SeedRating(t, pool, brandID, 5, true)
	testhelper.SeedRating(t, pool, brandID, 2, false)
	testhelper.SeedRating(t, pool, uuid.New(), 1, false) // other brand

	samples, err := repo.GetSamples(ctx, brandID)
	if err != nil {
		t.Fatalf("GetSamples: unexpected error: %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("samples len = %d, want 2", len(samples))
	}
	if samples[0].Stars != 5 || !samples[0].HasComment {
		t.Errorf("samples[0] = %+v, want the first 5-star comment", samples[0])
	}
	if samples[1].Stars != 2 {
		t.Errorf("samples[1].Stars = %d, want 2", samples[1].Stars)
	}
	if !samples[0].CreatedAt.Before(samples[1].CreatedAt) && !samples[0].CreatedAt.Equal(samples[1].CreatedAt) {
		t.Error("samples should come back oldest first")
	}
}

func TestRepo_GetSamples_NoRatings(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	samples, err := repo.GetSamples(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetSamples: unexpected error: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("samples len = %d, want 0", len(samples))
	}
}

func TestRepo_GetActivitySignal(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()
	brandID := uuid.New()

	now := time.Now().UTC()
	replied := now.Add(-time.Hour)
	testhelper.SeedComplaint(t, pool, brandID, now.Add(-2*time.Hour), &replied)
	testhelper.SeedComplaint(t, pool, brandID, now.Add(-3*time.Hour), nil)
	// Outside the 30-day window, replied or not it must not count.
	testhelper.SeedComplaint(t, pool, brandID, now.AddDate(0, 0, -45), nil)

	signal, err := repo.GetActivitySignal(ctx, brandID, 30)
	if err != nil {
		t.Fatalf("GetActivitySignal: unexpected error: %v", err)
	}

	if signal.ResponseRatio != 0.5 {
		t.Errorf("ResponseRatio = %v, want 0.5", signal.ResponseRatio)
	}
	if signal.WindowDays != 30 {
		t.Errorf("WindowDays = %d, want 30", signal.WindowDays)
	}
}

// No complaints in the window means a perfect ratio, not a zero one.
func TestRepo_GetActivitySignal_NoComplaints(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	signal, err := repo.GetActivitySignal(context.Background(), uuid.New(), 30)
	if err != nil {
		t.Fatalf("GetActivitySignal: unexpected error: %v", err)
	}
	if signal.ResponseRatio != 1 {
		t.Errorf("ResponseRatio = %v, want 1", signal.ResponseRatio)
	}
}

func TestRepo_ListRatedBrandIDs(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	brandA := uuid.New()
	brandB := uuid.New()
	testhelper.SeedRating(t, pool, brandA, 4, false)
	testhelper.SeedRating(t, pool, brandA, 5, true)
	testhelper.SeedRating(t, pool, brandB, 1, false)

	ids, err := repo.ListRatedBrandIDs(ctx)
	if err != nil {
		t.Fatalf("ListRatedBrandIDs: unexpected error: %v", err)
	}

	if !slices.Contains(ids, brandA) || !slices.Contains(ids, brandB) {
		t.Error("both rated brands should be listed")
	}
	count := 0
	for _, id := range ids {
		if id == brandA {
			count++
		}
	}
	if count != 1 {
		t.Errorf("brandA listed %d times, want 1 (distinct)", count)
	}
}
