package rank

// MMR selects up to k indices from docs via Maximal Marginal Relevance:
// greedy selection balancing relevance to the query vector against the
// maximum similarity to anything already selected.
//
//	score = lambda*sim(query, doc) - (1-lambda)*max(sim(doc, selected))
//
// lambda near 1 favors relevance, near 0 favors diversity. Ties break toward
// the earlier index, so output is deterministic for a given input order.
// Returns min(k, len(docs)) indices; callers needing relevance order must
// re-sort, as MMR output carries no score ordering guarantee.
func MMR(query []float32, docs [][]float32, k int, lambda float64) []int {
	if k <= 0 || len(docs) == 0 {
		return nil
	}
	if lambda < 0 {
		lambda = 0
	} else if lambda > 1 {
		lambda = 1
	}

	querySims := make([]float64, len(docs))
	for i, d := range docs {
		querySims[i] = Cosine(query, d)
	}

	selected := make([]int, 0, min(k, len(docs)))
	taken := make([]bool, len(docs))
	// maxSel[i] tracks the max similarity of docs[i] to the selected set, so
	// each round costs one new similarity per remaining doc instead of a full
	// rescan of the selection.
	maxSel := make([]float64, len(docs))

	for len(selected) < k {
		best := -1
		bestScore := 0.0
		for i := range docs {
			if taken[i] {
				continue
			}
			penalty := 0.0
			if len(selected) > 0 {
				penalty = maxSel[i]
			}
			score := lambda*querySims[i] - (1-lambda)*penalty
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			break
		}
		taken[best] = true
		selected = append(selected, best)
		for i := range docs {
			if taken[i] {
				continue
			}
			if sim := Cosine(docs[i], docs[best]); sim > maxSel[i] {
				maxSel[i] = sim
			}
		}
	}
	return selected
}
