package coalition

import "github.com/rawblock/mev-negotiator-core/internal/bundlemodel"

// computeShapley computes, for every member of members, its Shapley value:
// the average marginal contribution to v across all |members|! orderings.
//
// Spec §4.C4 permits the marginal-contribution dynamic-programming form
// (sum over subsets weighted by |S|!(n-|S|-1)!/n!) in place of walking all
// n! permutations directly; that is what this does, reducing the work from
// n! to 2^(n-1) per member. For the additive default CharFunc this equals
// each member's own promised_value, but the computation is general: it
// still evaluates v(S) itself wherever the caller's CharFunc is
// superadditive/synergistic.
func computeShapley(members []bundlemodel.RevealedBundle, v CharFunc) map[string]float64 {
	n := len(members)
	out := make(map[string]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[members[0].ScoutID] = float64(v(members))
		return out
	}

	fact := make([]float64, n+1)
	fact[0] = 1
	for i := 1; i <= n; i++ {
		fact[i] = fact[i-1] * float64(i)
	}
	nFact := fact[n]

	for i := 0; i < n; i++ {
		others := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				others = append(others, j)
			}
		}
		m := len(others) // n-1

		var total float64
		subsetsTotal := uint32(1) << uint(m)
		for mask := uint32(0); mask < subsetsTotal; mask++ {
			s := popcount(mask)
			weight := fact[s] * fact[n-s-1] / nFact

			withoutI := subsetByIndices(mask, others, members)
			withI := append(append([]bundlemodel.RevealedBundle(nil), withoutI...), members[i])

			marginal := float64(v(withI) - v(withoutI))
			total += weight * marginal
		}
		out[members[i].ScoutID] = total
	}
	return out
}

func subsetByIndices(mask uint32, indices []int, members []bundlemodel.RevealedBundle) []bundlemodel.RevealedBundle {
	var out []bundlemodel.RevealedBundle
	for bit, idx := range indices {
		if mask&(1<<uint(bit)) != 0 {
			out = append(out, members[idx])
		}
	}
	return out
}

// isStable reports whether the Shapley allocation lies in the core: for
// every strict non-empty sub-coalition S', sum(shapley[i in S']) >= v(S').
func isStable(members []bundlemodel.RevealedBundle, shapley map[string]float64, v CharFunc) bool {
	n := len(members)
	if n <= 1 {
		return true
	}
	total := uint32(1) << uint(n)
	for mask := uint32(1); mask < total-1; mask++ { // strict, non-empty proper subsets
		subset := subsetFor(mask, members)
		var sum float64
		for _, b := range subset {
			sum += shapley[b.ScoutID]
		}
		if sum < float64(v(subset))-1e-9 {
			return false
		}
	}
	return true
}
