package model

import "slices"

// PatternCategory is a named list of short style guidance strings.
type PatternCategory struct {
	Name  string   `json:"name" yaml:"name"`
	Items []string `json:"items" yaml:"items"`
}

// PatternPair joins the "do" and "don't" lists of one category name.
type PatternPair struct {
	Name string   `json:"name"`
	Do   []string `json:"do"`
	Dont []string `json:"dont"`
}

// PairPatterns joins patterns and antipatterns by category name. A name present on only one
// side gets an empty list for the other side. Order is first appearance, patterns first.
// Repeated names on the same side are merged in order.
func PairPatterns(patterns, antipatterns []PatternCategory) []PatternPair {
	var pairs []PatternPair
	index := make(map[string]int)

	pairFor := func(name string) *PatternPair {
		if i, ok := index[name]; ok {
			return &pairs[i]
		}
		index[name] = len(pairs)
		pairs = append(pairs, PatternPair{Name: name, Do: []string{}, Dont: []string{}})
		return &pairs[len(pairs)-1]
	}

	for _, c := range patterns {
		p := pairFor(c.Name)
		p.Do = append(p.Do, c.Items...)
	}
	for _, c := range antipatterns {
		p := pairFor(c.Name)
		p.Dont = append(p.Dont, c.Items...)
	}

	return pairs
}

func (p PatternPair) clone() PatternPair {
	return PatternPair{Name: p.Name, Do: slices.Clone(p.Do), Dont: slices.Clone(p.Dont)}
}
