package core

import "strings"

// Categorizer assigns categories by ordered substring matching against a
// rule table. The zero value has no rules and labels everything Others.
type Categorizer struct {
	rules []Rule
}

// NewCategorizer builds a categorizer over a private copy of rules. Keywords
// are case-folded once here so callers may pass mixed case.
func NewCategorizer(rules []Rule) *Categorizer {
	rs := cloneRules(rules)
	for i := range rs {
		kws := rs[i].Keywords[:0]
		for _, kw := range rs[i].Keywords {
			kw = fold(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		rs[i].Keywords = kws
	}
	return &Categorizer{rules: rs}
}

// fold maps every case variant of a string to one form. Lowering alone is not
// enough: 'ſ' lowers to itself but upper-cases to 'S'.
func fold(s string) string {
	return strings.ToLower(strings.ToUpper(s))
}

var defaultCategorizer = NewCategorizer(defaultRules)

// Categorize returns the category of the first rule with a keyword contained
// in the case-folded description, or Others when nothing matches.
func (c *Categorizer) Categorize(description string) Category {
	if c == nil || description == "" {
		return Others
	}
	desc := fold(description)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(desc, kw) {
				return r.Category
			}
		}
	}
	return Others
}

// Match is like Categorize but also reports the keyword that decided it.
// The keyword is empty when the result is the Others fallback.
func (c *Categorizer) Match(description string) (Category, string) {
	if c == nil || description == "" {
		return Others, ""
	}
	desc := fold(description)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(desc, kw) {
				return r.Category, kw
			}
		}
	}
	return Others, ""
}

// CategorizeAll labels every transaction, preserving input order.
func (c *Categorizer) CategorizeAll(txs []Transaction) []CategorizedTransaction {
	out := make([]CategorizedTransaction, len(txs))
	for i, t := range txs {
		out[i] = CategorizedTransaction{Transaction: t, Category: c.Categorize(t.Description)}
	}
	return out
}

// Categorize labels a description using the default rule table.
func Categorize(description string) Category {
	return defaultCategorizer.Categorize(description)
}

// CategorizeAll labels transactions using the default rule table.
func CategorizeAll(txs []Transaction) []CategorizedTransaction {
	return defaultCategorizer.CategorizeAll(txs)
}

// MatchKeyword reports the category and deciding keyword under the default
// rule table.
func MatchKeyword(description string) (Category, string) {
	return defaultCategorizer.Match(description)
}
