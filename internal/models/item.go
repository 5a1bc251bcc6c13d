package models

// Item represents a single entry on a shared list.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Gotten    bool   `json:"gotten"`
	Category  string `json:"category,omitempty"`
	Notes     string `json:"notes,omitempty"`
	UpdatedAt int64  `json:"updated_at"` // unix milliseconds
}

// Clone returns a copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// ItemPatch is a partial update to an item. Nil fields are left unchanged.
type ItemPatch struct {
	Name     *string `json:"name,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
	Gotten   *bool   `json:"gotten,omitempty"`
	Category *string `json:"category,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// Apply returns a copy of item with the patch applied.
func (p *ItemPatch) Apply(item *Item) *Item {
	out := item.Clone()
	if out == nil || p == nil {
		return out
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Quantity != nil {
		out.Quantity = *p.Quantity
	}
	if p.Gotten != nil {
		out.Gotten = *p.Gotten
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	return out
}
