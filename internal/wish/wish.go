// Package wish declares the wish history records shared with the backend.
package wish

import (
	"fmt"
	"slices"
	"time"

	"github.com/bytedance/sonic"
)

// Type is the kind of item a wish produced.
type Type string

const (
	TypeWeapon    Type = "Weapon"
	TypeCharacter Type = "Character"
)

// UnmarshalJSON rejects anything other than Weapon or Character.
func (t *Type) UnmarshalJSON(data []byte) error {
	var raw string
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("wish type: %w", err)
	}
	switch Type(raw) {
	case TypeWeapon, TypeCharacter:
		*t = Type(raw)
		return nil
	default:
		return fmt.Errorf("wish type: unknown value %q", raw)
	}
}

// Wish is a single historical gacha pull.
type Wish struct {
	Type   Type      `json:"type"`
	Number int       `json:"number"`
	Key    string    `json:"key"`
	Date   time.Time `json:"date"`
	Pity   int       `json:"pity"`
	Banner string    `json:"banner"`
	Rarity int       `json:"rarity"`
	Order  int       `json:"order"`
}

// Wishes groups wishes by wish banner key.
type Wishes map[string][]Wish

// Decode parses a Wishes document.
func Decode(data []byte) (Wishes, error) {
	var out Wishes
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode wishes: %w", err)
	}
	return out, nil
}

// Ordered returns the wishes of banner sorted by Order, oldest first.
func (w Wishes) Ordered(banner string) []Wish {
	list := slices.Clone(w[banner])
	slices.SortStableFunc(list, func(a, b Wish) int { return a.Order - b.Order })
	return list
}
