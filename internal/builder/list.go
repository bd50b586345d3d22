package builder

import "github.com/mdslide/mdslide/internal/markdown"

// listEntry is one (index, item) tuple the ListIterator emits, flattening
// a nested markdown.ListItem tree into presentation order.
type listEntry struct {
	Index int
	Depth int
	Item  markdown.ListItem
}

// ListIterator walks a list's items maintaining (next_index, current_depth,
// saved_indexes_stack): on depth increase it pushes the current index and
// resets to 0, on decrease it pops per level.
type ListIterator struct {
	items     []markdown.ListItem
	nextIndex []int // one counter per depth, index 0 = current depth's counter
}

// NewListIterator flattens a top-level list into emission order.
func NewListIterator(items []markdown.ListItem) *ListIterator {
	return &ListIterator{items: items, nextIndex: []int{0}}
}

// Entries returns every (index, item) pair in document order, depth-first.
func (it *ListIterator) Entries() []listEntry {
	var out []listEntry
	it.walk(it.items, 0, &out)
	return out
}

func (it *ListIterator) walk(items []markdown.ListItem, depth int, out *[]listEntry) {
	for len(it.nextIndex) <= depth {
		it.nextIndex = append(it.nextIndex, 0)
	}
	for _, item := range items {
		idx := it.nextIndex[depth]
		it.nextIndex[depth]++
		*out = append(*out, listEntry{Index: idx, Depth: depth, Item: item})
		if len(item.Children) > 0 {
			it.walk(item.Children, depth+1, out)
			it.nextIndex = it.nextIndex[:depth+1]
		}
	}
}

// Marker returns the bullet/number marker for an unordered/ordered entry.
func Marker(e listEntry) string {
	if e.Item.Ordered {
		return itoa(e.Item.Number) + "."
	}
	switch e.Depth {
	case 0:
		return "•"
	case 1:
		return "◦"
	default:
		return "▪"
	}
}

// Indent returns the column indent for an entry at the caller-supplied
// spacesPerIndent unit. emitList passes one unit (the theme's
// SpacesPerIndent, 3 when unset) for every depth and font size.
func Indent(e listEntry, spacesPerIndent int) int {
	return (e.Depth + 1) * spacesPerIndent
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}
