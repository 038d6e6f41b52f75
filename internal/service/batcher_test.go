package service

import (
	"fmt"
	"testing"

	"crypto_converter/internal/domain"
)

func makePairs(n int) []domain.Pair {
	pairs := make([]domain.Pair, n)
	for i := range pairs {
		pairs[i] = domain.NewPair(fmt.Sprintf("A%03d", i), "USDT")
	}
	return pairs
}

func TestBatchPairs_CoversInputExactlyOnce(t *testing.T) {
	for _, n := range []int{1, 5, 100, 801, 1600} {
		pairs := makePairs(n)
		batches := BatchPairs(pairs, 800)

		seen := make(map[string]int)
		total := 0
		for _, b := range batches {
			if len(b) == 0 {
				t.Fatalf("n=%d: empty batch", n)
			}
			if len(b) > 800 {
				t.Fatalf("n=%d: batch size %d exceeds limit", n, len(b))
			}
			for _, p := range b {
				seen[p.Symbol()]++
				total++
			}
		}
		if total != n {
			t.Errorf("n=%d: expected %d pairs across batches, got %d", n, n, total)
		}
		for sym, count := range seen {
			if count != 1 {
				t.Errorf("n=%d: pair %s appears %d times", n, sym, count)
			}
		}
	}
}

func TestBatchPairs_PreservesOrder(t *testing.T) {
	pairs := makePairs(10)
	batches := BatchPairs(pairs, 3)

	if len(batches) != 4 {
		t.Fatalf("expected 4 batches, got %d", len(batches))
	}

	i := 0
	for _, b := range batches {
		for _, p := range b {
			if p != pairs[i] {
				t.Fatalf("position %d: expected %s, got %s", i, pairs[i], p)
			}
			i++
		}
	}
}

func TestBatchPairs_EmptyInput(t *testing.T) {
	if batches := BatchPairs(nil, 800); len(batches) != 0 {
		t.Errorf("expected no batches for empty input, got %d", len(batches))
	}
}

func TestBatchPairs_CopiesInput(t *testing.T) {
	pairs := makePairs(4)
	batches := BatchPairs(pairs, 2)

	pairs[0] = domain.NewPair("MUT", "USDT")
	if batches[0][0].Base == "MUT" {
		t.Error("batch aliases the input slice")
	}
}
