package geometry

import (
	"sort"

	"github.com/tidwall/rtree"
)

// Index answers "which boxes lie inside this area" over a fixed set of boxes.
// Box i is reported as id i.
type Index struct {
	tree  rtree.RTreeG[int]
	boxes []Rect
}

// NewIndex builds an index over boxes
func NewIndex(boxes []Rect) *Index {
	idx := &Index{boxes: boxes}
	for i, b := range boxes {
		idx.tree.Insert([2]float64{b.Left, b.Top}, [2]float64{b.Right, b.Bottom}, i)
	}
	return idx
}

// Len returns the number of indexed boxes
func (idx *Index) Len() int {
	return len(idx.boxes)
}

// Contained returns the ids of boxes fully inside area, in ascending order
func (idx *Index) Contained(area Rect) []int {
	var ids []int
	if area.IsEmpty() {
		return ids
	}
	idx.tree.Search([2]float64{area.Left, area.Top}, [2]float64{area.Right, area.Bottom},
		func(_, _ [2]float64, id int) bool {
			if area.Contains(idx.boxes[id]) {
				ids = append(ids, id)
			}
			return true
		})
	sort.Ints(ids)
	return ids
}
