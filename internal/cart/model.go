package cart

// Item is one distinct product held in the cart. Title and Price are
// snapshotted when the product is first added and never re-synced.
type Item struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Candidate is what the catalog hands to AddItem.
type Candidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
}

// State is the cart aggregate. Items keep insertion order.
type State struct {
	Items []Item `json:"items"`
}

func (s State) Len() int { return len(s.Items) }

func (s State) IsEmpty() bool { return len(s.Items) == 0 }

func (s State) clone() State {
	if s.Items == nil {
		return State{Items: []Item{}}
	}
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return State{Items: items}
}

func (s State) indexOf(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}
