package entities

import (
	"math"
	"testing"

	"civicmap/internal/ids"
)

func TestAverageForBounds(t *testing.T) {
	ratings := []Rating{
		{Context: Diversity, Value: -1},
		{Context: Diversity, Value: 0},
		{Context: Diversity, Value: 2},
	}
	avg := AverageFor(ratings)
	got := avg.ByContext[Diversity]
	want := 1.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %f, want %f", got, want)
	}
}

func TestAverageForIgnoresArchived(t *testing.T) {
	archivedAt := ids.Now()
	ratings := []Rating{
		{Context: Fairness, Value: 2, ArchivedAt: &archivedAt},
		{Context: Fairness, Value: 0},
	}
	avg := AverageFor(ratings)
	if got := avg.ByContext[Fairness]; got != 0 {
		t.Fatalf("expected archived rating excluded, got %f", got)
	}
}

func TestAverageForEmptyContextIsZero(t *testing.T) {
	avg := AverageFor(nil)
	for _, ctx := range AllRatingContexts {
		if got := avg.ByContext[ctx]; got != 0 {
			t.Fatalf("expected 0 for %v, got %f", ctx, got)
		}
	}
	if avg.Total != 0 {
		t.Fatalf("expected total 0, got %f", avg.Total)
	}
}
