package datasource

import (
	"path/filepath"
	"testing"
	"time"
)

func TestCatalogRoundTrip(t *testing.T) {
	cat, err := OpenCatalog(filepath.Join(t.TempDir(), CatalogFile))
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer cat.Close()

	now := time.Now().Truncate(time.Second)
	entry := CatalogEntry{
		Name:          "gearbox",
		Dir:           "/models/gearbox",
		SourceFile:    "gearbox.step",
		PartCount:     42,
		AssemblyCount: 7,
		BOMModTime:    now,
	}
	if err := cat.Upsert(entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := cat.EntryByName("gearbox")
	if err != nil {
		t.Fatalf("EntryByName: %v", err)
	}
	if got.SourceFile != "gearbox.step" || got.PartCount != 42 || got.AssemblyCount != 7 {
		t.Errorf("entry = %+v", got)
	}
	if !got.BOMModTime.Equal(now) {
		t.Errorf("BOMModTime = %v, want %v", got.BOMModTime, now)
	}
	if got.IndexedAt.IsZero() {
		t.Error("IndexedAt should default to now")
	}

	// Upsert replaces in place.
	entry.PartCount = 43
	if err := cat.Upsert(entry); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if n, _ := cat.Count(); n != 1 {
		t.Errorf("Count = %d after re-upsert, want 1", n)
	}
	got, _ = cat.EntryByName("gearbox")
	if got.PartCount != 43 {
		t.Errorf("PartCount = %d, want 43", got.PartCount)
	}

	if _, err := cat.EntryByName("missing"); err == nil {
		t.Error("unknown name should fail")
	}

	if err := cat.Remove("gearbox"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n, _ := cat.Count(); n != 0 {
		t.Errorf("Count after remove = %d", n)
	}
	if err := cat.Remove("gearbox"); err != nil {
		t.Errorf("removing an unknown name should not fail: %v", err)
	}
}

func TestCatalogEntriesOrder(t *testing.T) {
	cat, err := OpenCatalog(filepath.Join(t.TempDir(), CatalogFile))
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	base := time.Now().Truncate(time.Second)
	for i, name := range []string{"older", "newest", "middle"} {
		offsets := []time.Duration{-2 * time.Hour, 0, -time.Hour}
		err := cat.Upsert(CatalogEntry{Name: name, Dir: "/m/" + name, BOMModTime: base.Add(offsets[i])})
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := cat.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	want := []string{"newest", "middle", "older"}
	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("entries[%d] = %s, want %s", i, entries[i].Name, name)
		}
	}
}

func TestReindex(t *testing.T) {
	root := t.TempDir()
	writeModel(t, root, "gearbox", validBOM, validManifest)
	writeModel(t, root, "pump", validBOM, "")

	n, err := Reindex(root, nil)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != 2 {
		t.Errorf("indexed %d models, want 2", n)
	}

	cat, err := OpenCatalog(filepath.Join(root, CatalogFile))
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	entry, err := cat.EntryByName("gearbox")
	if err != nil {
		t.Fatalf("EntryByName: %v", err)
	}
	if entry.SourceFile != "gearbox.step" {
		t.Errorf("SourceFile = %q", entry.SourceFile)
	}
	if entry.AssemblyCount != 1 || entry.PartCount != 1 {
		t.Errorf("counts = parts %d assemblies %d", entry.PartCount, entry.AssemblyCount)
	}
}
