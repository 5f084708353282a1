package domain

import "sort"

// CompoundGroup is an ordered set of compound identifiers, lower-case, named
// exactly as the instrument software reports them.
type CompoundGroup struct {
	Compounds []string `json:"compounds" validate:"required,min=1,dive,required"`
}

// ReactionSpec defines the chemistry of a catalytic test: the feed compounds
// and the product groups metrics are reported for. Records are immutable once
// loaded; the library rejects additions under an existing name.
type ReactionSpec struct {
	Name     string                   `json:"-" validate:"required"`
	Feed     CompoundGroup            `json:"feed" validate:"required"`
	Products map[string]CompoundGroup `json:"products" validate:"required,min=1,dive"`
}

// GroupNames returns the product group names in sorted order. Map iteration
// order must never leak into tables or reports.
func (r *ReactionSpec) GroupNames() []string {
	names := make([]string, 0, len(r.Products))
	for name := range r.Products {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProductCompounds returns the compounds of one product group, or nil when the
// group is not part of the reaction.
func (r *ReactionSpec) ProductCompounds(group string) []string {
	g, ok := r.Products[group]
	if !ok {
		return nil
	}
	return g.Compounds
}
