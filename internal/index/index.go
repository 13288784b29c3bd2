package index

import (
	"context"
	"maps"

	"go.uber.org/zap"

	"github.com/five82/wishtrack/internal/logging"
	"github.com/five82/wishtrack/internal/storage"
)

// Key is the storage key the index is persisted under.
const Key = "dataIndex"

// Character is reference data for one playable character.
type Character struct {
	Name       string `json:"name"`
	Rarity     int    `json:"rarity"`
	Element    string `json:"element,omitempty"`
	WeaponType string `json:"weaponType,omitempty"`
}

// Weapon is reference data for one weapon.
type Weapon struct {
	Name   string `json:"name"`
	Rarity int    `json:"rarity"`
	Type   string `json:"type,omitempty"`
}

// AchievementCategory is reference data for one achievement category.
type AchievementCategory struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
	Total int    `json:"total,omitempty"`
}

// DataIndex holds every reference record, keyed by opaque item key.
type DataIndex struct {
	Character           map[string]Character           `json:"character"`
	Weapon              map[string]Weapon              `json:"weapon"`
	AchievementCategory map[string]AchievementCategory `json:"achievementCategory"`
}

// Default returns an index with all three categories empty.
func Default() DataIndex {
	return DataIndex{
		Character:           map[string]Character{},
		Weapon:              map[string]Weapon{},
		AchievementCategory: map[string]AchievementCategory{},
	}
}

// Clone deep-copies d. Missing categories come back as empty maps.
func (d DataIndex) Clone() DataIndex {
	out := Default()
	maps.Copy(out.Character, d.Character)
	maps.Copy(out.Weapon, d.Weapon)
	maps.Copy(out.AchievementCategory, d.AchievementCategory)
	return out
}

// Merge returns a copy of d with every record in other added, replacing
// records that share a key.
func (d DataIndex) Merge(other DataIndex) DataIndex {
	out := d.Clone()
	maps.Copy(out.Character, other.Character)
	maps.Copy(out.Weapon, other.Weapon)
	maps.Copy(out.AchievementCategory, other.AchievementCategory)
	return out
}

// Len returns the number of records across all categories.
func (d DataIndex) Len() int {
	return len(d.Character) + len(d.Weapon) + len(d.AchievementCategory)
}

// Store is a session on the persisted index.
type Store struct {
	*storage.Persisted[DataIndex]
	logger *logging.Logger
}

// Open attaches a session to the index on hub.
func Open(ctx context.Context, hub *storage.Hub, logger *logging.Logger) (*Store, error) {
	p, err := storage.Open(ctx, hub, Key, Default(), DataIndex.Clone)
	if err != nil {
		return nil, err
	}
	return &Store{Persisted: p, logger: logging.OrNop(logger).Named("index")}, nil
}

// Merge folds newly arrived reference data into the stored index.
func (s *Store) Merge(ctx context.Context, incoming DataIndex) error {
	if err := s.Update(ctx, func(cur DataIndex) DataIndex { return cur.Merge(incoming) }); err != nil {
		return err
	}
	s.logger.Debug("index merged", zap.Int("records", incoming.Len()))
	return nil
}
