package extract

import "strings"

// TagSet is a set of semantic labels attached to a fragment by the classifier
type TagSet uint8

const (
	TagLeft TagSet = 1 << iota
	TagCenter
	TagRight
	TagIntroduction
	TagProducts
	TagPrices
	TagConclusion
)

const (
	zoneTags       = TagLeft | TagCenter | TagRight
	structuralTags = TagIntroduction | TagProducts | TagPrices | TagConclusion
)

var tagNames = []struct {
	tag  TagSet
	name string
}{
	{TagLeft, "LEFT"},
	{TagCenter, "CENTER"},
	{TagRight, "RIGHT"},
	{TagIntroduction, "INTRODUCTION"},
	{TagProducts, "PRODUCTS"},
	{TagPrices, "PRICES"},
	{TagConclusion, "CONCLUSION"},
}

// Has reports whether every tag of t is in s
func (s TagSet) Has(t TagSet) bool {
	return t != 0 && s&t == t
}

// Any reports whether s shares at least one tag with t
func (s TagSet) Any(t TagSet) bool {
	return s&t != 0
}

// Zone returns the horizontal zone tag of s
func (s TagSet) Zone() TagSet {
	return s & zoneTags
}

// Structure returns the structural tags of s
func (s TagSet) Structure() TagSet {
	return s & structuralTags
}

// Retag replaces every structural tag of s with t
func (s TagSet) Retag(t TagSet) TagSet {
	return s&^structuralTags | t
}

func (s TagSet) String() string {
	var names []string
	for _, tn := range tagNames {
		if s.Has(tn.tag) {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, "|")
}

// MarshalText encodes the set as its pipe-separated names
func (s TagSet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
