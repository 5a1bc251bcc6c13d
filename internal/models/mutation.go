package models

import "fmt"

// MutationType represents the kind of pending write.
type MutationType string

const (
	MutationAdd        MutationType = "add"
	MutationUpdate     MutationType = "update"
	MutationMarkGotten MutationType = "mark_gotten"
	MutationDelete     MutationType = "delete"
)

// MutationStatus is the state of a queued mutation.
type MutationStatus string

const (
	StatusPending    MutationStatus = "pending"
	StatusProcessing MutationStatus = "processing"
	StatusFailed     MutationStatus = "failed"
	StatusSuccess    MutationStatus = "success"
)

// Default priorities by mutation type. Deletes run first so the queue never
// wastes work creating or updating something about to disappear, and a
// concurrent add+delete of the same item resolves toward "deleted wins".
const (
	PriorityDelete = 100
	PriorityUpdate = 50
	PriorityAdd    = 10
)

// DefaultPriority returns the priority assigned to a mutation type when the
// caller does not supply one.
func DefaultPriority(t MutationType) int {
	switch t {
	case MutationDelete:
		return PriorityDelete
	case MutationUpdate, MutationMarkGotten:
		return PriorityUpdate
	default:
		return PriorityAdd
	}
}

// AddPayload creates a new item.
type AddPayload struct {
	Item *Item `json:"item"`
}

// UpdatePayload applies a partial update to an existing item.
// Base carries the remote snapshot the edit was made against; the conflict
// pre-check compares it to the current remote state to catch concurrent
// remote edits before the write is applied.
type UpdatePayload struct {
	ItemID string     `json:"item_id"`
	Patch  *ItemPatch `json:"patch"`
	Base   *Item      `json:"base,omitempty"`
}

// MarkGottenPayload flips the completion flag on an item.
type MarkGottenPayload struct {
	ItemID string `json:"item_id"`
	Gotten bool   `json:"gotten"`
	Base   *Item  `json:"base,omitempty"`
}

// DeletePayload removes an item.
type DeletePayload struct {
	ItemID string `json:"item_id"`
}

// Mutation is a pending write awaiting execution. Exactly one payload field
// is set, matching Type.
type Mutation struct {
	ID         string             `json:"id"`
	Type       MutationType       `json:"type"`
	Add        *AddPayload        `json:"add,omitempty"`
	Update     *UpdatePayload     `json:"update,omitempty"`
	MarkGotten *MarkGottenPayload `json:"mark_gotten,omitempty"`
	Delete     *DeletePayload     `json:"delete,omitempty"`
	Timestamp  int64              `json:"timestamp"` // unix milliseconds, assigned at enqueue
	RetryCount int                `json:"retry_count"`
	Status     MutationStatus     `json:"status"`
	Error      string             `json:"error,omitempty"`
	Priority   int                `json:"priority"`
}

// ItemID returns the identifier of the item this mutation targets.
func (m *Mutation) ItemID() string {
	switch m.Type {
	case MutationAdd:
		if m.Add != nil && m.Add.Item != nil {
			return m.Add.Item.ID
		}
	case MutationUpdate:
		if m.Update != nil {
			return m.Update.ItemID
		}
	case MutationMarkGotten:
		if m.MarkGotten != nil {
			return m.MarkGotten.ItemID
		}
	case MutationDelete:
		if m.Delete != nil {
			return m.Delete.ItemID
		}
	}
	return ""
}

// BaseState returns the remote snapshot the mutation was based on, if any.
// Only update and mark_gotten mutations carry one.
func (m *Mutation) BaseState() *Item {
	switch m.Type {
	case MutationUpdate:
		if m.Update != nil {
			return m.Update.Base
		}
	case MutationMarkGotten:
		if m.MarkGotten != nil {
			return m.MarkGotten.Base
		}
	}
	return nil
}

// Validate checks that the payload matches the mutation type.
// Shape problems are reported at execution time, not enqueue time.
func (m *Mutation) Validate() error {
	switch m.Type {
	case MutationAdd:
		if m.Add == nil || m.Add.Item == nil {
			return fmt.Errorf("add mutation %s has no item payload", m.ID)
		}
	case MutationUpdate:
		if m.Update == nil || m.Update.Patch == nil {
			return fmt.Errorf("update mutation %s has no patch payload", m.ID)
		}
	case MutationMarkGotten:
		if m.MarkGotten == nil {
			return fmt.Errorf("mark_gotten mutation %s has no payload", m.ID)
		}
	case MutationDelete:
		if m.Delete == nil || m.Delete.ItemID == "" {
			return fmt.Errorf("delete mutation %s has no target", m.ID)
		}
	default:
		return fmt.Errorf("unknown mutation type %q", m.Type)
	}
	return nil
}

// Clone returns a deep-enough copy for handing out to callers.
func (m *Mutation) Clone() *Mutation {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
