package schema

import (
	"errors"
	"sort"
)

// maxSuggestDistance bounds how far a misspelling may be from a known name.
const maxSuggestDistance = 2

// Suggest returns the known name closest to an unresolved reference in err's
// chain, or "" when there is none or nothing is close enough.
func (d *Definition) Suggest(err error) string {
	var (
		te *UnknownTargetError
		oe *UnknownOperatorError
		fe *UnknownFieldError
	)
	switch {
	case errors.As(err, &te):
		return closest(te.Target, d.TargetNames())
	case errors.As(err, &oe):
		return closest(oe.Operator, sortedKeys(d.Operators))
	case errors.As(err, &fe):
		parent, perr := d.Target(fe.Target)
		if perr != nil {
			return ""
		}
		if fe.Depth > len(fe.Path) {
			return ""
		}
		for _, seg := range fe.Path[:fe.Depth] {
			if parent = parent.Fields[seg]; parent == nil {
				return ""
			}
		}
		if len(parent.Fields) == 0 {
			return ""
		}
		return closest(fe.Segment, sortedKeys(parent.Fields))
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// closest picks the candidate with the smallest edit distance, first in order on ties.
func closest(name string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := damerauLevenshtein(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// damerauLevenshtein counts insertions, deletions, substitutions and adjacent
// transpositions needed to turn a into b.
func damerauLevenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	d := make([][]int, len(ra)+1)
	for i := range d {
		d[i] = make([]int, len(rb)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+cost)
			}
		}
	}
	return d[len(ra)][len(rb)]
}
