package pipeline

import "strconv"

// Item is an opaque token identified by its claimed production index.
type Item struct {
	Index int
}

func NewItem(index int) Item {
	return Item{Index: index}
}

// Label renders the item as "Item-<index>".
func (i Item) Label() string {
	return "Item-" + strconv.Itoa(i.Index)
}

func (i Item) String() string {
	return i.Label()
}
