// Package model defines the BOM document and part record types shared by the
// loader, the assembly tree, the identity resolver, and the UI.
//
// The data contract mirrors what the upstream STEP extractor writes to
// bom_data.json: a flat assembly_tree of records linked by parent_id, with a
// single root record carrying is_root and a null parent.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// NoParent is the sentinel used where a record has no resolvable parent.
// The extractor writes null; after unmarshaling that is a nil ParentID.
const NoParent = -1

// Color is the surface color the extractor attached to a part, 0-255 per
// channel plus the precomputed hex form. Parts without color metadata get
// the extractor's default gray.
type Color struct {
	R   int    `json:"r"`
	G   int    `json:"g"`
	B   int    `json:"b"`
	Hex string `json:"hex"`
}

// DefaultColor returns the extractor's fallback gray (#808080).
func DefaultColor() Color {
	return Color{R: 128, G: 128, B: 128, Hex: "#808080"}
}

// Translation is a placement offset in model units.
type Translation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Location is the serialized placement of a component within its assembly.
// Identity placements are omitted entirely (nil) by the extractor.
type Location struct {
	Translation Translation `json:"translation"`
	HasRotation bool        `json:"has_rotation"`
	ScaleFactor float64     `json:"scale_factor"`
}

// PartRecord is one row of the flat assembly tree. Records are immutable
// once a document is loaded; the tree builder and resolver only read them.
type PartRecord struct {
	ID            int       `json:"id"`
	ParentID      *int      `json:"parent_id"`
	Name          string    `json:"name"`
	ReferenceName string    `json:"reference_name,omitempty"`
	ShapeType     string    `json:"shape_type,omitempty"`
	Type          string    `json:"type,omitempty"`
	IsAssembly    bool      `json:"is_assembly"`
	IsRoot        bool      `json:"is_root,omitempty"`
	Color         *Color    `json:"color,omitempty"`
	Location      *Location `json:"location,omitempty"`

	// IsFallback marks a record synthesized by the viewer because no BOM
	// record matched a scene mesh. Never present in loaded documents.
	IsFallback bool `json:"is_fallback,omitempty"`
}

// Parent returns the parent id or NoParent when the record is parentless.
func (p PartRecord) Parent() int {
	if p.ParentID == nil {
		return NoParent
	}
	return *p.ParentID
}

// HasParent reports whether the record references a parent at all.
func (p PartRecord) HasParent() bool {
	return p.ParentID != nil
}

// DisplayName returns the best human-facing name for the record:
// reference_name when present, else name, else the decimal id.
func (p PartRecord) DisplayName() string {
	if p.ReferenceName != "" {
		return p.ReferenceName
	}
	if p.Name != "" {
		return p.Name
	}
	return strconv.Itoa(p.ID)
}

// Validate checks the invariants a loaded record must satisfy.
func (p PartRecord) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("record has invalid id %d (extractor UIDs start at 1)", p.ID)
	}
	if p.IsRoot && p.ParentID != nil {
		return fmt.Errorf("record %d is marked root but has parent %d", p.ID, *p.ParentID)
	}
	if strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.ReferenceName) == "" {
		return fmt.Errorf("record %d has neither name nor reference_name", p.ID)
	}
	return nil
}

// FallbackRecord synthesizes a placeholder record for a scene mesh that no
// BOM record matched. The UI still gets something to display; IsFallback
// lets it flag the row instead of treating the miss as an error.
func FallbackRecord(meshName string) PartRecord {
	return PartRecord{
		ID:         0,
		Name:       meshName,
		ShapeType:  "Unknown",
		Type:       "part",
		IsFallback: true,
	}
}

// Document is a complete BOM document for one model, as written by the
// upstream extractor. Replaced wholesale when the user switches models.
type Document struct {
	Filename        string       `json:"filename"`
	FullPath        string       `json:"full_path,omitempty"`
	Timestamp       string       `json:"timestamp"`
	TotalParts      int          `json:"total_parts"`
	TotalAssemblies int          `json:"total_assemblies"`
	BOMType         string       `json:"bom_type,omitempty"`
	GeneratedBy     string       `json:"generated_by,omitempty"`
	Version         string       `json:"version,omitempty"`
	AssemblyTree    []PartRecord `json:"assembly_tree"`
}

// RecordByID builds an id -> record index over the document.
func (d *Document) RecordByID() map[int]*PartRecord {
	byID := make(map[int]*PartRecord, len(d.AssemblyTree))
	for i := range d.AssemblyTree {
		byID[d.AssemblyTree[i].ID] = &d.AssemblyTree[i]
	}
	return byID
}

// CountParts recomputes the part/assembly split from the records themselves,
// independent of the header totals (which are advisory).
func (d *Document) CountParts() (parts, assemblies int) {
	for _, rec := range d.AssemblyTree {
		if rec.IsAssembly {
			assemblies++
		} else {
			parts++
		}
	}
	return parts, assemblies
}
