package grove

// spacingIndex answers "is any accepted point closer than minSpacing". Cells
// are minSpacing wide, so only the 3×3 neighbourhood of a point's cell can
// hold a conflict. Only occupied cells are stored. The predicate matches a
// full scan of every accepted point exactly.
type spacingIndex struct {
	minX, minZ float32
	cell       float32
	minSq      float32
	cells      map[CellID][][2]float32
}

// newSpacingIndex creates an index whose cells are anchored at (minX, minZ).
// A non-positive spacing disables the check.
func newSpacingIndex(minX, minZ, spacing float32) *spacingIndex {
	if !(spacing > 0) {
		return &spacingIndex{}
	}
	return &spacingIndex{
		minX:  minX,
		minZ:  minZ,
		cell:  spacing,
		minSq: spacing * spacing,
		cells: make(map[CellID][][2]float32),
	}
}

func (s *spacingIndex) cellOf(x, z float32) CellID {
	return CellID{X: floorDiv(x-s.minX, s.cell), Z: floorDiv(z-s.minZ, s.cell)}
}

// conflicts reports whether (x, z) is strictly closer than the spacing to an
// inserted point.
func (s *spacingIndex) conflicts(x, z float32) bool {
	if s.cells == nil {
		return false
	}
	c := s.cellOf(x, z)
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			for _, p := range s.cells[CellID{X: c.X + dx, Z: c.Z + dz}] {
				ddx := p[0] - x
				ddz := p[1] - z
				if ddx*ddx+ddz*ddz < s.minSq {
					return true
				}
			}
		}
	}
	return false
}

func (s *spacingIndex) insert(x, z float32) {
	if s.cells == nil {
		return
	}
	c := s.cellOf(x, z)
	s.cells[c] = append(s.cells[c], [2]float32{x, z})
}

// occupied returns the number of cells holding at least one point.
func (s *spacingIndex) occupied() int { return len(s.cells) }
