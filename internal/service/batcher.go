package service

import "crypto_converter/internal/domain"

// BatchPairs partitions the tracked pairs into connection-sized batches of at
// most limit streams each. Input order is preserved, so batch assignment is
// reproducible across restarts. Batches are disjoint and together cover the
// input exactly once; no batch is empty. Empty input yields no batches.
func BatchPairs(pairs []domain.Pair, limit int) [][]domain.Pair {
	if len(pairs) == 0 || limit <= 0 {
		return nil
	}

	batches := make([][]domain.Pair, 0, (len(pairs)+limit-1)/limit)
	for start := 0; start < len(pairs); start += limit {
		end := start + limit
		if end > len(pairs) {
			end = len(pairs)
		}
		batch := make([]domain.Pair, end-start)
		copy(batch, pairs[start:end])
		batches = append(batches, batch)
	}
	return batches
}
