// Package conflict detects and resolves divergence between a local and a
// remote version of the same item. All functions are pure: given identical
// inputs they return identical outputs, so results are reproducible in tests
// and on a server-side re-resolution.
package conflict

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/kaurvahtra/listq/internal/models"
)

// Sentinel errors for contract violations and non-resolvable strategies.
var (
	ErrNilItem          = errors.New("both items must be non-nil")
	ErrIDMismatch       = errors.New("item ID mismatch")
	ErrManualResolution = errors.New("manual resolution required")
)

// Fields compared by Detect.
const (
	FieldName     = "name"
	FieldQuantity = "quantity"
	FieldGotten   = "gotten"
	FieldCategory = "category"
	FieldNotes    = "notes"
)

// autoResolveMaxGap is the timestamp gap beyond which one side is considered
// stale rather than genuinely concurrent, making last-write-wins safe.
const autoResolveMaxGap = 5 * 60 * 1000 // milliseconds

// HasConflict reports whether two field values differ under the
// emptiness-aware rule: nil and empty string are interchangeable, so two
// empty values never conflict, while exactly one empty value always does.
// Composite values are compared deeply.
func HasConflict(local, remote any) bool {
	localEmpty := isEmpty(local)
	remoteEmpty := isEmpty(remote)

	if localEmpty && remoteEmpty {
		return false
	}
	if localEmpty != remoteEmpty {
		return true
	}

	if isComposite(local) || isComposite(remote) {
		return !reflect.DeepEqual(local, remote)
	}

	return local != remote
}

// isEmpty treats nil (including typed nil) and the empty string as empty.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// isComposite reports whether a value needs deep comparison.
func isComposite(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Ptr:
		return true
	}
	return false
}

// Detect compares two versions of the same item and returns a Conflict
// describing every differing field, or (nil, nil) if the versions agree.
// Mismatched IDs are a caller bug and fail loudly.
func Detect(local, remote *models.Item) (*models.Conflict, error) {
	if local == nil || remote == nil {
		return nil, ErrNilItem
	}
	if local.ID != remote.ID {
		return nil, fmt.Errorf("%w: local %q vs remote %q", ErrIDMismatch, local.ID, remote.ID)
	}

	var fields []models.FieldConflict
	check := func(name string, lv, rv any) {
		if HasConflict(lv, rv) {
			fields = append(fields, models.FieldConflict{
				Field:           name,
				Local:           lv,
				Remote:          rv,
				LocalTimestamp:  local.UpdatedAt,
				RemoteTimestamp: remote.UpdatedAt,
			})
		}
	}

	check(FieldName, local.Name, remote.Name)
	check(FieldQuantity, local.Quantity, remote.Quantity)
	check(FieldGotten, local.Gotten, remote.Gotten)
	check(FieldCategory, local.Category, remote.Category)
	check(FieldNotes, local.Notes, remote.Notes)

	if len(fields) == 0 {
		return nil, nil
	}

	c := &models.Conflict{
		ItemID:         local.ID,
		Local:          local,
		Remote:         remote,
		FieldConflicts: fields,
		DetectedAt:     time.Now().UnixMilli(),
	}

	// Identity-defining fields are too semantically loaded to auto-merge.
	c.RequiresManual = c.HasField(FieldName) || c.HasField(FieldCategory)

	return c, nil
}

// Resolve applies one named strategy to a conflict and returns the winning
// or merged item. The manual strategy always errors: it signals "do not
// auto-resolve" and forces caller-level user interaction.
func Resolve(c *models.Conflict, strategy models.ResolutionStrategy) (*models.Item, error) {
	if c == nil || c.Local == nil || c.Remote == nil {
		return nil, ErrNilItem
	}

	switch strategy {
	case models.StrategyLastWriteWins:
		return lastWriteWins(c.Local, c.Remote), nil
	case models.StrategyFieldMerge:
		return MergeFields(c.Local, c.Remote), nil
	case models.StrategyPreferLocal:
		return c.Local.Clone(), nil
	case models.StrategyPreferRemote:
		return c.Remote.Clone(), nil
	case models.StrategyPreferGotten:
		if c.Local.Gotten != c.Remote.Gotten {
			if c.Local.Gotten {
				return c.Local.Clone(), nil
			}
			return c.Remote.Clone(), nil
		}
		return lastWriteWins(c.Local, c.Remote), nil
	case models.StrategyManual:
		return nil, ErrManualResolution
	default:
		return nil, fmt.Errorf("unknown resolution strategy %q", strategy)
	}
}

// AutoResolve attempts to resolve a conflict without user intervention.
// Rules are evaluated in fixed priority order; nil means no rule applied
// and the caller must surface the conflict for manual resolution.
func AutoResolve(c *models.Conflict) *models.Item {
	if c == nil || c.Local == nil || c.Remote == nil {
		return nil
	}
	if c.RequiresManual {
		return nil
	}

	// Rule 1: a completion-flag mismatch merges toward the completed side.
	// A sync must never revert a user's "done" action.
	if c.Local.Gotten != c.Remote.Gotten {
		return MergeFields(c.Local, c.Remote)
	}

	// Rule 2: a large timestamp gap means one side is stale, not concurrent.
	gap := c.Local.UpdatedAt - c.Remote.UpdatedAt
	if gap < 0 {
		gap = -gap
	}
	if gap > autoResolveMaxGap {
		return lastWriteWins(c.Local, c.Remote)
	}

	// Rule 3: if every differing field is freely mergeable, merge.
	if onlyFields(c, FieldNotes) {
		return MergeFields(c.Local, c.Remote)
	}

	// Rule 4: concurrent quantity edits accumulate rather than overwrite.
	if onlyFields(c, FieldQuantity) {
		return MergeFields(c.Local, c.Remote)
	}

	return nil
}

// MergeFields reconciles two versions field by field: the completion flag
// ORs toward true, quantity takes the maximum, notes concatenate unless one
// contains the other, and every other field comes from the side with the
// later timestamp (ties break toward remote).
func MergeFields(local, remote *models.Item) *models.Item {
	merged := lastWriteWins(local, remote)

	merged.Gotten = local.Gotten || remote.Gotten
	merged.Quantity = max(local.Quantity, remote.Quantity)
	merged.Notes = mergeNotes(local.Notes, remote.Notes)
	merged.UpdatedAt = max(local.UpdatedAt, remote.UpdatedAt)

	return merged
}

// lastWriteWins picks the version with the greater timestamp.
// An exact tie breaks toward remote, for determinism.
func lastWriteWins(local, remote *models.Item) *models.Item {
	if local.UpdatedAt > remote.UpdatedAt {
		return local.Clone()
	}
	return remote.Clone()
}

// mergeNotes combines two notes strings. Exact-equal and substring cases
// collapse to the longer string; otherwise both are kept with a separator.
func mergeNotes(local, remote string) string {
	switch {
	case local == "":
		return remote
	case remote == "":
		return local
	case strings.Contains(local, remote):
		return local
	case strings.Contains(remote, local):
		return remote
	default:
		return local + "; " + remote
	}
}

// onlyFields reports whether every conflicting field is in the given set.
func onlyFields(c *models.Conflict, allowed ...string) bool {
	for _, fc := range c.FieldConflicts {
		ok := false
		for _, a := range allowed {
			if fc.Field == a {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return len(c.FieldConflicts) > 0
}
