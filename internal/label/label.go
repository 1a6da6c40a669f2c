package label

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// View is the page context a label is rendered in.
type View string

const (
	ViewListing View = "listing"
	ViewProduct View = "product"
)

// ProductController is the controller name that routes to a product page.
const ProductController = "product"

// Rule is an active product label, already loaded from the rule source.
type Rule struct {
	ID                   int    `json:"id"`
	Identifier           string `json:"identifier"`
	Name                 string `json:"name"`
	AttributeID          int    `json:"attribute_id"`
	OptionID             string `json:"option_id"`
	DisplayOn            []View `json:"display_on"`
	PositionProductView  string `json:"position_product_view"`
	PositionCategoryList string `json:"position_category_list"`
	IsActive             bool   `json:"is_active"`
	ImageName            string `json:"image"`
	Alt                  string `json:"alt"`
}

// ShownOn reports whether the rule is eligible for the view.
func (r Rule) ShownOn(view View) bool {
	for _, v := range r.DisplayOn {
		if v == view {
			return true
		}
	}
	return false
}

// ResolvedAttribute is a product's selected value(s) for one attribute.
type ResolvedAttribute struct {
	AttributeID int       `json:"id"`
	Label       string    `json:"label"`
	Options     OptionSet `json:"options"`
}

// MatchedLabel is a rule that applies to a product, with its css class for
// the view it was matched against.
type MatchedLabel struct {
	Rule
	Class string `json:"class"`
}

// ViewFromController maps a request's controller name to a view.
func ViewFromController(controller string) View {
	if controller == ProductController {
		return ViewProduct
	}
	return ViewListing
}

// WrapperClass returns the class of the element wrapping all labels.
func WrapperClass(view View) string {
	if view == ViewProduct {
		return "product"
	}
	return "listing"
}

// CSSClass returns the position class of a rule rendered in view.
func CSSClass(rule Rule, view View) string {
	switch view {
	case ViewProduct:
		return rule.PositionProductView + " product"
	case ViewListing:
		return rule.PositionCategoryList + " category"
	}
	return ""
}

// ParseDisplayOn splits the stored comma separated display_on column.
// Unknown tokens are dropped and the result is never empty.
func ParseDisplayOn(raw string) []View {
	views := make([]View, 0, 2)
	seen := make(map[View]bool, 2)
	for _, token := range strings.Split(raw, ",") {
		v := View(strings.TrimSpace(token))
		if v != ViewListing && v != ViewProduct {
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		views = append(views, v)
	}
	if len(views) == 0 {
		views = append(views, ViewListing)
	}
	return views
}

// AttributeIDs returns the distinct attribute ids referenced by rules, in
// the order they first appear.
func AttributeIDs(rules []Rule) []int {
	ids := make([]int, 0, len(rules))
	seen := make(map[int]bool, len(rules))
	for _, r := range rules {
		if seen[r.AttributeID] {
			continue
		}
		seen[r.AttributeID] = true
		ids = append(ids, r.AttributeID)
	}
	return ids
}

// Match returns the rules that apply to a product with the given resolved
// attributes, in rule order. It never fails: a rule whose attribute is not
// resolved simply does not match.
func Match(rules []Rule, attrs map[int]ResolvedAttribute, view View) []MatchedLabel {
	matched := make([]MatchedLabel, 0)
	for _, rule := range rules {
		attr, ok := attrs[rule.AttributeID]
		if !ok {
			continue
		}
		if !attr.Options.Has(rule.OptionID) || !rule.ShownOn(view) {
			continue
		}
		matched = append(matched, MatchedLabel{
			Rule:  rule,
			Class: CSSClass(rule, view),
		})
	}
	return matched
}

// OptionSet is the canonical form of an attribute's selected option ids.
type OptionSet map[string]struct{}

// NewOptionSet builds a set from option ids.
func NewOptionSet(ids ...string) OptionSet {
	s := make(OptionSet, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
	return s
}

// ParseOptions normalises a stored attribute value into an OptionSet.
// Strings are comma separated (multiselect values are stored that way).
func ParseOptions(value any) OptionSet {
	switch v := value.(type) {
	case nil:
		return OptionSet{}
	case OptionSet:
		return v
	case string:
		return NewOptionSet(strings.Split(v, ",")...)
	case []string:
		return NewOptionSet(v...)
	case int:
		return NewOptionSet(strconv.Itoa(v))
	case int64:
		return NewOptionSet(strconv.FormatInt(v, 10))
	case float64:
		return NewOptionSet(strconv.FormatFloat(v, 'f', -1, 64))
	case []int:
		ids := make([]string, len(v))
		for i, n := range v {
			ids[i] = strconv.Itoa(n)
		}
		return NewOptionSet(ids...)
	case []any:
		s := OptionSet{}
		for _, item := range v {
			for id := range ParseOptions(item) {
				s[id] = struct{}{}
			}
		}
		return s
	}
	return OptionSet{}
}

// Has reports whether id is selected.
func (s OptionSet) Has(id string) bool {
	_, ok := s[strings.TrimSpace(id)]
	return ok
}

// Slice returns the option ids sorted, for stable serialisation.
func (s OptionSet) Slice() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON encodes the set as a sorted array.
func (s OptionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}
