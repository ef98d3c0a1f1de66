package sema

import (
	"slices"
	"unicode/utf8"
)

// ResolveParam finds the earliest parameter named exactly name.
func ResolveParam(name string, params []ParamDesc) (uint32, bool) {
	for _, p := range params {
		if p.Name == name && name != "" {
			return p.Index, true
		}
	}
	return 0, false
}

// SuggestParam proposes a declared parameter for a misspelled name. A lone
// parameter is always proposed.
func SuggestParam(typo string, params []ParamDesc) (string, bool) {
	if len(params) == 1 {
		return params[0].Name, params[0].Name != ""
	}
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return closestName(typo, names, typoThreshold(typo))
}

// ResolveTParam finds the earliest template parameter (at any depth) named
// name and returns its position path.
func ResolveTParam(name string, tparams []TParamDesc) ([]uint32, bool) {
	for _, tp := range tparams {
		if tp.Name == name && name != "" {
			return slices.Clone(tp.Path), true
		}
	}
	return nil, false
}

// SuggestTParam mirrors SuggestParam; the lone-candidate rule looks at the
// outermost list only.
func SuggestTParam(typo string, tparams []TParamDesc) (string, bool) {
	var top []string
	for _, tp := range tparams {
		if tp.Depth == 0 {
			top = append(top, tp.Name)
		}
	}
	if len(top) == 1 {
		return top[0], top[0] != ""
	}
	names := make([]string, 0, len(tparams))
	for _, tp := range tparams {
		names = append(names, tp.Name)
	}
	return closestName(typo, names, typoThreshold(typo))
}

// typoThreshold allows roughly one edit per three runes, at least one.
func typoThreshold(typo string) int {
	return max(1, (utf8.RuneCountInString(typo)+2)/3)
}

// closestName returns the unique candidate within limit edits whose distance
// is strictly smaller than any other distinct candidate's.
func closestName(typo string, candidates []string, limit int) (string, bool) {
	best, bestDist, runnerUp := "", limit+1, limit+1
	for _, name := range candidates {
		if name == "" || name == best {
			continue
		}
		d := EditDistance(typo, name, limit)
		switch {
		case d < bestDist:
			runnerUp = bestDist
			best, bestDist = name, d
		case d < runnerUp:
			runnerUp = d
		}
	}
	if bestDist > limit || bestDist == runnerUp {
		return "", false
	}
	return best, true
}

// EditDistance is the Levenshtein distance between a and b counted in runes.
// Once the distance is known to exceed limit it returns limit+1; a negative
// limit disables the bound.
func EditDistance(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	if limit >= 0 {
		if diff := len(ra) - len(rb); diff > limit || -diff > limit {
			return limit + 1
		}
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, cur[j])
		}
		if limit >= 0 && rowMin > limit {
			return limit + 1
		}
		prev, cur = cur, prev
	}
	d := prev[len(rb)]
	if limit >= 0 && d > limit {
		return limit + 1
	}
	return d
}
