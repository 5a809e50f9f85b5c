package fragment

// FamilyOf returns the display family for a fragment kind.
func FamilyOf(k Kind) Family {
	f, ok := familyMap[k]
	if !ok {
		return Content // unrecognised HTML is treated as content
	}
	return f
}

// IsGrid reports whether k is a card-grid or composite kind.
func IsGrid(k Kind) bool {
	f := FamilyOf(k)
	return f == CardGrid || f == Composite
}

var familyMap = map[Kind]Family{
	Banner:  Structure,
	Section: Structure,
	Row:     Structure,
	Column:  Structure,

	Table:    Content,
	Markdown: Content,
	Chart:    Content,
	Unknown:  Content,

	CountGrid:     CardGrid,
	DonutGrid:     CardGrid,
	HistogramGrid: CardGrid,
	BoxGrid:       CardGrid,
	ViolinGrid:    CardGrid,

	PairGrid:    Composite,
	HistoGrid:   Composite,
	BoxplotGrid: Composite,
	DensityGrid: Composite,
}
