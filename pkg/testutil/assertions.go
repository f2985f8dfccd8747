package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/assembly"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
)

// AssertRecordCount verifies the expected number of records in a document.
func AssertRecordCount(t *testing.T, doc model.Document, expected int) {
	t.Helper()
	if len(doc.AssemblyTree) != expected {
		t.Errorf("expected %d records, got %d", expected, len(doc.AssemblyTree))
	}
}

// AssertNoDuplicateIDs verifies all record ids are unique.
func AssertNoDuplicateIDs(t *testing.T, records []model.PartRecord) {
	t.Helper()
	seen := make(map[int]bool)
	for _, rec := range records {
		if seen[rec.ID] {
			t.Errorf("duplicate record id: %d", rec.ID)
		}
		seen[rec.ID] = true
	}
}

// AssertAllValid verifies all records pass validation.
func AssertAllValid(t *testing.T, records []model.PartRecord) {
	t.Helper()
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			t.Errorf("record %d (id %d) invalid: %v", i, rec.ID, err)
		}
	}
}

// AssertSingleRoot verifies exactly one record is parentless.
func AssertSingleRoot(t *testing.T, records []model.PartRecord) {
	t.Helper()
	byID := make(map[int]bool, len(records))
	for _, rec := range records {
		byID[rec.ID] = true
	}
	var roots []int
	for _, rec := range records {
		if !rec.HasParent() || !byID[rec.Parent()] {
			roots = append(roots, rec.ID)
		}
	}
	if len(roots) != 1 {
		t.Errorf("expected exactly one root, got %v", roots)
	}
}

// AssertFullyReachable verifies the built tree covers every input record.
func AssertFullyReachable(t *testing.T, doc model.Document) *assembly.Tree {
	t.Helper()
	tree := assembly.Build(doc.AssemblyTree)
	if tree.Dropped != 0 {
		t.Errorf("tree dropped %d of %d records", tree.Dropped, len(doc.AssemblyTree))
	}
	if tree.Len() != len(doc.AssemblyTree) {
		t.Errorf("tree has %d nodes, document has %d records", tree.Len(), len(doc.AssemblyTree))
	}
	return tree
}

// AssertChildOf verifies the parent/child edge exists in the tree.
func AssertChildOf(t *testing.T, tree *assembly.Tree, childID, parentID int) {
	t.Helper()
	child := tree.NodeByID(childID)
	if child == nil {
		t.Errorf("record %d not in tree", childID)
		return
	}
	if child.Parent == nil || child.Parent.Record.ID != parentID {
		t.Errorf("record %d is not a child of %d", childID, parentID)
	}
}

// AssertJSONEqual compares two values after JSON round-tripping. Useful for
// comparing structs that may have different Go representations but
// equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// GoldenFile handles golden file comparisons. Set UPDATE_GOLDEN=1 to
// rewrite the stored files instead of comparing.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper rooted at testdata/golden.
func NewGoldenFile(t *testing.T, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    filepath.Join("testdata", "golden"),
		name:   name,
		update: os.Getenv("UPDATE_GOLDEN") == "1",
	}
}

// Assert compares got against the stored golden content, updating the file
// when UPDATE_GOLDEN is set.
func (g *GoldenFile) Assert(got string) {
	g.t.Helper()
	path := filepath.Join(g.dir, g.name)
	if g.update {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			g.t.Fatalf("creating golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			g.t.Fatalf("writing golden file: %v", err)
		}
		return
	}
	want, err := os.ReadFile(path)
	if err != nil {
		g.t.Fatalf("reading golden file %s (run with UPDATE_GOLDEN=1 to create): %v", path, err)
	}
	if got != string(want) {
		g.t.Errorf("golden mismatch for %s:\n--- want\n%s\n--- got\n%s",
			g.name, strings.TrimRight(string(want), "\n"), strings.TrimRight(got, "\n"))
	}
}
