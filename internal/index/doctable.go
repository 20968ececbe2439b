package index

import (
	"github.com/RoaringBitmap/roaring"
)

// DocTable assigns dense document numbers to external document ids. All
// field indexes of a corpus share one table so their postings can be
// combined directly.
type DocTable struct {
	ids  []string
	nums map[string]uint32
}

// NewDocTable creates an empty table.
func NewDocTable() *DocTable {
	return &DocTable{nums: make(map[string]uint32)}
}

// Add returns the number of id, assigning the next one if id is new.
func (t *DocTable) Add(id string) uint32 {
	if n, ok := t.nums[id]; ok {
		return n
	}
	n := uint32(len(t.ids))
	t.ids = append(t.ids, id)
	t.nums[id] = n
	return n
}

// Num returns the number of id.
func (t *DocTable) Num(id string) (uint32, bool) {
	n, ok := t.nums[id]
	return n, ok
}

// ID returns the external id of num.
func (t *DocTable) ID(num uint32) string {
	if int(num) >= len(t.ids) {
		return ""
	}
	return t.ids[num]
}

// Len returns the number of known documents.
func (t *DocTable) Len() int {
	return len(t.ids)
}

// All returns a bitmap holding every document number.
func (t *DocTable) All() *roaring.Bitmap {
	bm := roaring.New()
	if len(t.ids) > 0 {
		bm.AddRange(0, uint64(len(t.ids)))
	}
	return bm
}

// IDs resolves a bitmap to external ids in document-number order.
func (t *DocTable) IDs(bm *roaring.Bitmap) []string {
	if bm == nil {
		return nil
	}
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		if id := t.ID(it.Next()); id != "" {
			out = append(out, id)
		}
	}
	return out
}
