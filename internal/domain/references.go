package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// ReferenceSet is a deduplicated set of namespace identifiers.
// Empty strings are never stored.
type ReferenceSet map[string]struct{}

// NewReferenceSet builds a set from the given items.
func NewReferenceSet(items ...string) ReferenceSet {
	s := make(ReferenceSet, len(items))
	s.Add(items...)
	return s
}

// Add inserts non-empty items.
func (s ReferenceSet) Add(items ...string) {
	for _, it := range items {
		if it == "" {
			continue
		}
		s[it] = struct{}{}
	}
}

// Union adds every member of other.
func (s ReferenceSet) Union(other ReferenceSet) {
	for it := range other {
		s[it] = struct{}{}
	}
}

func (s ReferenceSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

func (s ReferenceSet) Len() int { return len(s) }

// Sorted returns the members in lexical order.
func (s ReferenceSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for it := range s {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

func (s ReferenceSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *ReferenceSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewReferenceSet(items...)
	return nil
}

// ExtractReferences collects the namespaces a project depends on: explicit
// references, using directives and import statements across all files.
func ExtractReferences(project *ParsedProject) ReferenceSet {
	refs := NewReferenceSet()
	if project == nil {
		return refs
	}
	for _, f := range project.Files {
		for _, r := range f.References {
			refs.Add(r.Namespace)
		}
		refs.Add(f.Usings...)
		refs.Add(f.Imports...)
	}
	return refs
}

// RuleKey is the cache key of a namespace.
func RuleKey(namespace string) string {
	return strings.ToLower(namespace)
}

// RuleFileName is the on-disk name of a namespace's rule resource.
func RuleFileName(namespace string) string {
	return RuleKey(namespace) + ".json"
}
