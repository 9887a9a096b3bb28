// Package versiontag lets bootstrap code register schemas under
// human-readable semver tags ("1.2.0") and have them ordered into dense
// dataversion.DataVersion ordinals, instead of hand-assigning integers.
//
// This is additive: DataVersion itself stays a bare monotonic integer
// exactly as spec.md §3 defines it. versiontag is the bridge a caller's
// registerSchemas callback can use at bootstrap time; the engine core
// never imports this package back.
//
// Grounded in the teacher's pkg/version.Version, whose semver arm
// (NewSemverVersion, compareSemver) the distillation collapsed away when
// it reduced Version to a bare DataVersion integer.
package versiontag

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/astronomer/datafixers/pkg/dataversion"
)

// Sequence assigns dense, ascending DataVersion ordinals to a set of
// semver-shaped tags, breaking ties by semver precedence rather than
// string order.
type Sequence struct {
	tags     []string
	versions map[string]dataversion.DataVersion
}

// NewSequence parses every tag as a semver version, sorts them in
// semver order, and assigns ordinals 0, 1, 2, ... in that order.
// Duplicate or unparseable tags return an error.
func NewSequence(tags []string) (*Sequence, error) {
	type parsed struct {
		tag string
		ver *semver.Version
	}
	entries := make([]parsed, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			return nil, fmt.Errorf("duplicate version tag %q", tag)
		}
		seen[tag] = true
		v, err := semver.NewVersion(tag)
		if err != nil {
			return nil, fmt.Errorf("invalid semver tag %q: %w", tag, err)
		}
		entries = append(entries, parsed{tag: tag, ver: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ver.LessThan(entries[j].ver)
	})

	versions := make(map[string]dataversion.DataVersion, len(entries))
	ordered := make([]string, 0, len(entries))
	for i, e := range entries {
		versions[e.tag] = dataversion.DataVersion(i)
		ordered = append(ordered, e.tag)
	}
	return &Sequence{tags: ordered, versions: versions}, nil
}

// Version returns the DataVersion ordinal assigned to tag.
func (s *Sequence) Version(tag string) (dataversion.DataVersion, bool) {
	v, ok := s.versions[tag]
	return v, ok
}

// Tags returns the tags in ascending DataVersion order.
func (s *Sequence) Tags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}
