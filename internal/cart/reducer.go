package cart

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be a whole number")

type ActionKind string

const (
	ActionAdd         ActionKind = "add"
	ActionRemove      ActionKind = "remove"
	ActionSetQuantity ActionKind = "set_quantity"
	ActionClear       ActionKind = "clear"
	ActionConsume     ActionKind = "consume"
)

// Action is a single cart transition. Build one with Add, Remove,
// SetQuantity or Clear.
type Action struct {
	Kind      ActionKind
	Candidate Candidate
	ID        string
	Quantity  int
	Lines     []Item
}

func Add(c Candidate) Action { return Action{Kind: ActionAdd, Candidate: c, ID: c.ID} }

func Remove(id string) Action { return Action{Kind: ActionRemove, ID: id} }

func SetQuantity(id string, quantity int) Action {
	return Action{Kind: ActionSetQuantity, ID: id, Quantity: quantity}
}

func Clear() Action { return Action{Kind: ActionClear} }

// Consume takes the given lines out of the cart, leaving any quantity
// beyond what each line holds.
func Consume(lines []Item) Action { return Action{Kind: ActionConsume, Lines: lines} }

// Apply returns the state that results from applying a to s. It never
// modifies s.
func Apply(s State, a Action) State {
	next := s.clone()

	switch a.Kind {
	case ActionAdd:
		if i := next.indexOf(a.Candidate.ID); i >= 0 {
			next.Items[i].Quantity = clampQuantity(next.Items[i].Quantity + 1)
			return next
		}
		next.Items = append(next.Items, Item{
			ID:       a.Candidate.ID,
			Title:    a.Candidate.Title,
			Price:    a.Candidate.Price,
			Quantity: 1,
		})

	case ActionRemove:
		if i := next.indexOf(a.ID); i >= 0 {
			next.Items = append(next.Items[:i], next.Items[i+1:]...)
		}

	case ActionSetQuantity:
		if i := next.indexOf(a.ID); i >= 0 {
			next.Items[i].Quantity = clampQuantity(a.Quantity)
		}

	case ActionClear:
		next.Items = []Item{}

	case ActionConsume:
		for _, line := range a.Lines {
			i := next.indexOf(line.ID)
			if i < 0 {
				continue
			}
			if left := next.Items[i].Quantity - line.Quantity; left > 0 {
				next.Items[i].Quantity = left
				continue
			}
			next.Items = append(next.Items[:i], next.Items[i+1:]...)
		}
	}

	return next
}

func clampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxQuantity:
		return MaxQuantity
	}
	return q
}

// ParseQuantity accepts user input such as "3", " 2 " or "4.0" and rejects
// anything that is not a whole number or whose magnitude exceeds
// MaxQuantity. Values below 1 are returned as-is; the reducer clamps them.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidQuantity
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() {
		return 0, ErrInvalidQuantity
	}
	if d.Abs().GreaterThan(decimal.NewFromInt(MaxQuantity)) {
		return 0, ErrInvalidQuantity
	}
	return int(d.IntPart()), nil
}

// MaxQuantity caps a single line's quantity.
const MaxQuantity = 999
