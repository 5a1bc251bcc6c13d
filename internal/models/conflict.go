package models

// ResolutionStrategy defines how a conflict between two item versions is resolved.
type ResolutionStrategy string

const (
	StrategyLastWriteWins ResolutionStrategy = "last-write-wins"
	StrategyFieldMerge    ResolutionStrategy = "field-level-merge"
	StrategyPreferLocal   ResolutionStrategy = "prefer-local"
	StrategyPreferRemote  ResolutionStrategy = "prefer-remote"
	StrategyPreferGotten  ResolutionStrategy = "prefer-gotten"
	StrategyManual        ResolutionStrategy = "manual"
)

// FieldConflict records one field whose local and remote values differ.
type FieldConflict struct {
	Field           string `json:"field"`
	Local           any    `json:"local"`
	Remote          any    `json:"remote"`
	LocalTimestamp  int64  `json:"local_timestamp,omitempty"`
	RemoteTimestamp int64  `json:"remote_timestamp,omitempty"`
}

// Conflict represents a detected divergence between a local and a remote
// version of the same item. Computed, never persisted.
type Conflict struct {
	ItemID         string          `json:"item_id"`
	Local          *Item           `json:"local"`
	Remote         *Item           `json:"remote"`
	FieldConflicts []FieldConflict `json:"field_conflicts"`
	RequiresManual bool            `json:"requires_manual"`
	DetectedAt     int64           `json:"detected_at"`
}

// HasField reports whether the named field is among the conflicting ones.
func (c *Conflict) HasField(name string) bool {
	for _, fc := range c.FieldConflicts {
		if fc.Field == name {
			return true
		}
	}
	return false
}
