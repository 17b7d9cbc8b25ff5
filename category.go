package grove

import "fmt"

// Category tags a batch for per-category culling policy and statistics.
type Category uint8

const (
	CategoryGeneric         Category = iota // no category-specific policy
	CategoryTreeWood                        // trunks and branches
	CategoryTreeLeaves                      // tree canopies
	CategoryGrass                           // grass blades
	CategoryRock                            // rocks and boulders
	CategoryFoliageBranches                 // plant stems
	CategoryFoliageLeaves                   // plant leaves

	categoryCount
)

var categoryNames = [categoryCount]string{
	CategoryGeneric:         "generic",
	CategoryTreeWood:        "tree-wood",
	CategoryTreeLeaves:      "tree-leaves",
	CategoryGrass:           "grass",
	CategoryRock:            "rock",
	CategoryFoliageBranches: "foliage-branches",
	CategoryFoliageLeaves:   "foliage-leaves",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, categoryCount)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// String returns the lower-case name used in presets and stats output.
func (c Category) String() string {
	if c < categoryCount {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// ParseCategory returns the category with the given name.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return CategoryGeneric, fmt.Errorf("grove: unknown category %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if c >= categoryCount {
		return nil, fmt.Errorf("grove: invalid category %d", uint8(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	v, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// CategoryCounts holds one counter per category.
type CategoryCounts [categoryCount]int

// Get returns the counter for c. Out-of-range categories read as zero.
func (cc *CategoryCounts) Get(c Category) int {
	if c >= categoryCount {
		return 0
	}
	return cc[c]
}

func (cc *CategoryCounts) add(c Category, n int) {
	if c < categoryCount {
		cc[c] += n
	}
}

// Map returns the non-zero counters keyed by category name.
func (cc *CategoryCounts) Map() map[string]int {
	m := make(map[string]int)
	for i, v := range cc {
		if v != 0 {
			m[categoryNames[i]] = v
		}
	}
	return m
}
