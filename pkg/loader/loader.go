// Package loader reads BOM documents from disk.
//
// The STEP extractor writes one bom_data.json per model directory. Loading
// is deliberately forgiving: individual records that fail validation are
// skipped with a warning rather than failing the whole document, because a
// partially usable tree beats an error banner.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
)

// ModelDirEnvVar overrides where model directories are looked up.
const ModelDirEnvVar = "BOMVIEW_MODEL_DIR"

// DefaultBOMFile is the fixed filename the extractor writes.
const DefaultBOMFile = "bom_data.json"

// GetModelDir returns the model directory, respecting BOMVIEW_MODEL_DIR.
// With no override and an empty argument it falls back to the current
// working directory.
func GetModelDir(dir string) (string, error) {
	if envDir := os.Getenv(ModelDirEnvVar); envDir != "" {
		return envDir, nil
	}
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
		return cwd, nil
	}
	return dir, nil
}

// FindBOMPath locates the BOM file in a model directory, skipping backup
// and editor artifacts.
func FindBOMPath(dir string) (string, error) {
	path := filepath.Join(dir, DefaultBOMFile)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}

	// Fall back to any *.json carrying the extractor's document shape
	// marker in its name.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read model directory: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.Contains(name, ".backup") || strings.Contains(name, ".orig") {
			continue
		}
		if strings.Contains(name, "bom") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("no BOM file found in %s", dir)
}

// ParseOptions configures document parsing.
type ParseOptions struct {
	// WarningHandler is called with warning messages for records that
	// are skipped. If nil, warnings go to os.Stderr.
	WarningHandler func(string)

	// RecordFilter optionally drops records. Return true to include.
	// When nil, all valid records are included.
	RecordFilter func(*model.PartRecord) bool
}

// LoadDocument locates and reads the BOM document for a model directory.
func LoadDocument(dir string) (*model.Document, error) {
	dir, err := GetModelDir(dir)
	if err != nil {
		return nil, err
	}
	path, err := FindBOMPath(dir)
	if err != nil {
		return nil, err
	}
	return LoadDocumentFromFile(path)
}

// LoadDocumentFromFile reads a BOM document from a specific path.
func LoadDocumentFromFile(path string) (*model.Document, error) {
	return LoadDocumentFromFileWithOptions(path, ParseOptions{})
}

// LoadDocumentFromFileWithOptions reads a BOM document with custom options.
func LoadDocumentFromFileWithOptions(path string, opts ParseOptions) (*model.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open BOM file: %w", err)
	}
	defer file.Close()

	doc, err := ParseDocumentWithOptions(file, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument parses a BOM document from a reader.
func ParseDocument(r io.Reader) (*model.Document, error) {
	return ParseDocumentWithOptions(r, ParseOptions{})
}

// ParseDocumentWithOptions parses a BOM document, dropping records that
// fail validation. A document with no usable records at all is an error.
func ParseDocumentWithOptions(r io.Reader, opts ParseOptions) (*model.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading BOM stream: %w", err)
	}
	data = stripBOM(data)

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling BOM document: %w", err)
	}
	if len(doc.AssemblyTree) == 0 {
		return nil, fmt.Errorf("document has an empty assembly_tree")
	}

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}

	kept := make([]model.PartRecord, 0, len(doc.AssemblyTree))
	for i, rec := range doc.AssemblyTree {
		if err := rec.Validate(); err != nil {
			warn(fmt.Sprintf("skipping record %d: %v", i, err))
			continue
		}
		if opts.RecordFilter != nil && !opts.RecordFilter(&rec) {
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("document has no valid records")
	}
	doc.AssemblyTree = kept
	return &doc, nil
}

// stripBOM removes the UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
