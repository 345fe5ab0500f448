// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

// Category10 is the ten-color categorical palette rows are colored from,
// as "#rrggbb" strings.
var Category10 = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#7f7f7f",
	"#bcbd22",
	"#17becf",
}

// PreferredCategories are the known change types in the order they
// claim palette slots. A feed containing only some of them still gets
// the same color for each, so NewStudy is always the second palette
// color regardless of which categories appear first.
var PreferredCategories = []string{
	"NewSeries",
	"NewStudy",
	"NewPatient",
	"NewInstance",
	"StableSeries",
	"StableStudy",
	"StablePatient",
}

// palette assigns colors to categories like an ordinal scale with an
// implicit domain: the preferred categories are registered up front,
// and any other category is appended to the domain the first time it
// is asked for. Colors cycle through the palette by domain position.
type palette struct {
	colors []string
	domain map[string]int
}

func newPalette(colors []string) *palette {
	if len(colors) == 0 {
		colors = Category10
	}
	result := &palette{
		colors: colors,
		domain: make(map[string]int, len(PreferredCategories)),
	}
	for _, category := range PreferredCategories {
		result.color(category)
	}
	return result
}

func (p *palette) color(category string) string {
	index, exists := p.domain[category]
	if !exists {
		index = len(p.domain)
		p.domain[category] = index
	}
	return p.colors[index%len(p.colors)]
}
