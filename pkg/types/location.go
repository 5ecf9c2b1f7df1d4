package types

import "sort"

// Location is a fully-qualified storage address (scheme://bucket/key...)
// naming where a table's or schema's data resides. Locations are compared
// byte-for-byte; trailing slashes, doubled slashes, percent characters,
// and whitespace are all significant.
type Location string

// FileSet is the set of object locations observed under a storage prefix
// at one instant. Uniqueness is by exact string; insertion order carries
// no meaning.
type FileSet map[Location]struct{}

// NewFileSet builds a FileSet from the given locations.
func NewFileSet(locs ...Location) FileSet {
	s := make(FileSet, len(locs))
	for _, l := range locs {
		s[l] = struct{}{}
	}
	return s
}

// Add inserts a location into the set.
func (s FileSet) Add(l Location) {
	s[l] = struct{}{}
}

// Contains reports whether l is in the set.
func (s FileSet) Contains(l Location) bool {
	_, ok := s[l]
	return ok
}

// Len returns the number of locations in the set.
func (s FileSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set.
func (s FileSet) Clone() FileSet {
	out := make(FileSet, len(s))
	for l := range s {
		out[l] = struct{}{}
	}
	return out
}

// Union returns a new set holding every location in s or other.
func (s FileSet) Union(other FileSet) FileSet {
	out := make(FileSet, len(s)+len(other))
	for l := range s {
		out[l] = struct{}{}
	}
	for l := range other {
		out[l] = struct{}{}
	}
	return out
}

// Diff returns the locations in s that are not in other.
func (s FileSet) Diff(other FileSet) FileSet {
	out := make(FileSet)
	for l := range s {
		if !other.Contains(l) {
			out[l] = struct{}{}
		}
	}
	return out
}

// SymmetricDiff returns the locations in exactly one of s and other.
// Invariant diagnostics report this set so a failure names the precise
// files that violated the law.
func (s FileSet) SymmetricDiff(other FileSet) FileSet {
	return s.Diff(other).Union(other.Diff(s))
}

// Equal reports whether s and other hold exactly the same locations.
func (s FileSet) Equal(other FileSet) bool {
	if len(s) != len(other) {
		return false
	}
	for l := range s {
		if !other.Contains(l) {
			return false
		}
	}
	return true
}

// Locations returns the set's members sorted lexically, for stable
// diagnostics and serialization.
func (s FileSet) Locations() []Location {
	out := make([]Location, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
