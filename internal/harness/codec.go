package harness

import (
	"fmt"
	"regexp"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// locationAssignment matches a location = '...' assignment anywhere in a
// description, across newlines. Non-greedy so the first closing quote
// ends the match.
var locationAssignment = regexp.MustCompile(`(?s)location = '(.*?)'`)

// locationShape splits scheme://bucket/key. The key group is greedy and
// unanchored by any character class, so doubled slashes, percent
// characters, and whitespace survive verbatim.
var locationShape = regexp.MustCompile(`^[a-z][a-z0-9+.\-]*://([^/]+)/(.+)$`)

// ExtractLocation finds the single location assignment in a textual
// table or schema description. Zero matches is ErrLocationNotFound; any
// second occurrence, even a textually identical one, is
// ErrAmbiguousLocation, to catch structural surprises in descriptions
// with duplicated key lines.
func ExtractLocation(text string) (types.Location, error) {
	matches := locationAssignment.FindAllStringSubmatch(text, 2)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %q", types.ErrLocationNotFound, text)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("%w: second match %q", types.ErrAmbiguousLocation, matches[1][1])
	}
	return types.Location(matches[0][1]), nil
}

// SplitLocation splits a scheme://bucket/key location into its bucket
// and key prefix. The key prefix is returned byte-for-byte: no
// normalization, no percent decoding, no whitespace trimming, since the
// path encodings under test depend on exact round-tripping.
func SplitLocation(loc types.Location) (bucket, keyPrefix string, err error) {
	m := locationShape.FindStringSubmatch(string(loc))
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", types.ErrMalformedLocation, loc)
	}
	return m[1], m[2], nil
}
