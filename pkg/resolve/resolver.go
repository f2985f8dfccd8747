// Package resolve maps scene mesh names to BOM part records and back.
//
// The two sides of the viewer are produced by independent upstream tools:
// the mesh converter names drawables after whatever the CAD file carried,
// the BOM extractor records both a label name and a reference name. The
// resolver bridges them with a fixed precedence chain of string matches;
// first success wins, there is no scoring and no backtracking.
package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
)

// Strategy identifies which rule of the precedence chain produced a match.
type Strategy int

const (
	// StrategyNone means no rule matched.
	StrategyNone Strategy = iota
	// StrategyExactReference: mesh name == reference_name.
	StrategyExactReference
	// StrategyExactName: mesh name == name.
	StrategyExactName
	// StrategyExactID: mesh name == decimal id.
	StrategyExactID
	// StrategySubstringReference: reference_name contains the mesh name or
	// vice versa.
	StrategySubstringReference
	// StrategySubstringName: name contains the mesh name or vice versa.
	StrategySubstringName
	// StrategyNormalized: both sides with any trailing -N/_N suffix
	// stripped, compared case-insensitively as a contains check.
	StrategyNormalized
)

// String returns a short label for logging.
func (s Strategy) String() string {
	switch s {
	case StrategyExactReference:
		return "exact-reference"
	case StrategyExactName:
		return "exact-name"
	case StrategyExactID:
		return "exact-id"
	case StrategySubstringReference:
		return "substring-reference"
	case StrategySubstringName:
		return "substring-name"
	case StrategyNormalized:
		return "normalized"
	default:
		return "none"
	}
}

// Match is a successful resolution: the canonical record plus the strategy
// that found it.
type Match struct {
	Record   *model.PartRecord
	Strategy Strategy
}

// trailingIndexRe strips instance suffixes like "Bracket-12" or "Shaft_003"
// that converters append when a part occurs multiple times.
var trailingIndexRe = regexp.MustCompile(`[-_][0-9]+$`)

// Normalize removes a trailing -N/_N instance suffix and lowercases.
func Normalize(name string) string {
	return strings.ToLower(trailingIndexRe.ReplaceAllString(name, ""))
}

// containsEither reports whether either string contains the other.
// Empty strings never match: an absent reference_name must not act as a
// universal substring.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// MeshToRecord resolves a scene mesh name against records in tree traversal
// order. Each strategy scans the full record list before the next one runs,
// so an exact match anywhere always beats a substring match everywhere.
// Ties within a strategy go to the first record encountered; that order is
// documented, not guaranteed unique.
func MeshToRecord(meshName string, records []*model.PartRecord) (Match, bool) {
	if meshName == "" || len(records) == 0 {
		return Match{}, false
	}

	for _, rec := range records {
		if rec.ReferenceName != "" && rec.ReferenceName == meshName {
			return Match{Record: rec, Strategy: StrategyExactReference}, true
		}
	}
	for _, rec := range records {
		if rec.Name != "" && rec.Name == meshName {
			return Match{Record: rec, Strategy: StrategyExactName}, true
		}
	}
	for _, rec := range records {
		if strconv.Itoa(rec.ID) == meshName {
			return Match{Record: rec, Strategy: StrategyExactID}, true
		}
	}
	for _, rec := range records {
		if containsEither(rec.ReferenceName, meshName) {
			return Match{Record: rec, Strategy: StrategySubstringReference}, true
		}
	}
	for _, rec := range records {
		if containsEither(rec.Name, meshName) {
			return Match{Record: rec, Strategy: StrategySubstringName}, true
		}
	}
	normMesh := Normalize(meshName)
	for _, rec := range records {
		if containsEither(Normalize(rec.ReferenceName), normMesh) ||
			containsEither(Normalize(rec.Name), normMesh) {
			return Match{Record: rec, Strategy: StrategyNormalized}, true
		}
	}
	return Match{}, false
}

// MeshToRecordOrFallback resolves a mesh name, synthesizing a fallback
// record when nothing matches so callers always have something to show.
func MeshToRecordOrFallback(meshName string, records []*model.PartRecord) Match {
	if m, ok := MeshToRecord(meshName, records); ok {
		return m
	}
	rec := model.FallbackRecord(meshName)
	return Match{Record: &rec, Strategy: StrategyNone}
}

// RecordToMesh resolves a BOM record to a scene mesh name using the same
// precedence chain mirrored onto the mesh-name list: exact reference, exact
// name, exact id, then the substring and normalized checks. meshNames must
// be in the scene's traversal order.
func RecordToMesh(rec *model.PartRecord, meshNames []string) (string, Strategy, bool) {
	if rec == nil || len(meshNames) == 0 {
		return "", StrategyNone, false
	}

	for _, name := range meshNames {
		if rec.ReferenceName != "" && name == rec.ReferenceName {
			return name, StrategyExactReference, true
		}
	}
	for _, name := range meshNames {
		if rec.Name != "" && name == rec.Name {
			return name, StrategyExactName, true
		}
	}
	id := strconv.Itoa(rec.ID)
	for _, name := range meshNames {
		if name == id {
			return name, StrategyExactID, true
		}
	}
	for _, name := range meshNames {
		if containsEither(rec.ReferenceName, name) {
			return name, StrategySubstringReference, true
		}
	}
	for _, name := range meshNames {
		if containsEither(rec.Name, name) {
			return name, StrategySubstringName, true
		}
	}
	normRef := Normalize(rec.ReferenceName)
	normName := Normalize(rec.Name)
	for _, name := range meshNames {
		norm := Normalize(name)
		if containsEither(normRef, norm) || containsEither(normName, norm) {
			return name, StrategyNormalized, true
		}
	}
	return "", StrategyNone, false
}
