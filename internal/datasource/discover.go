// Package datasource discovers model directories for bomview. A models
// root holds one directory per converted model, each with the extractor's
// bom_data.json and, when the converter ran, a scene.json manifest and the
// GLB itself. Discovery finds, validates, and orders those directories so
// the UI can offer a model picker and auto-select when only one exists.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/loader"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/scene"
)

// GLBFile is the fixed mesh filename the converter writes.
const GLBFile = "model.glb"

// ModelSource is one discovered model directory.
type ModelSource struct {
	// Name is the directory name, used as the model's display name.
	Name string `json:"name"`
	// Dir is the absolute path of the model directory.
	Dir string `json:"dir"`
	// BOMPath is the BOM file inside Dir.
	BOMPath string `json:"bom_path"`
	// ScenePath is the scene manifest, empty when the converter has not
	// produced one.
	ScenePath string `json:"scene_path,omitempty"`
	// GLBPath is the mesh file, empty when absent.
	GLBPath string `json:"glb_path,omitempty"`
	// ModTime is the BOM file's modification time.
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation.
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed.
	ValidationError string `json:"validation_error,omitempty"`
	// PartCount is the number of records in the BOM (set during
	// validation).
	PartCount int `json:"part_count"`
}

// String returns a human-readable description of the source.
func (s ModelSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (mod=%s, parts=%d, %s)",
		s.Dir, s.ModTime.Format(time.RFC3339), s.PartCount, status)
}

// HasScene reports whether the model has a loadable 3D side.
func (s ModelSource) HasScene() bool {
	return s.ScenePath != ""
}

// DiscoveryOptions configures model discovery.
type DiscoveryOptions struct {
	// Root is the models root directory. Falls back to BOMVIEW_MODEL_DIR
	// and then the current directory.
	Root string
	// ValidateAfterDiscovery parses each BOM to confirm it is usable.
	ValidateAfterDiscovery bool
	// IncludeInvalid keeps sources that failed validation in the result.
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery.
	Verbose bool
	// Logger receives log messages when Verbose is true.
	Logger func(msg string)
}

// DiscoverModels finds model directories under the root. The root itself
// counts when it directly contains a BOM file, so pointing bomview at a
// single model directory works without a wrapper directory. Results are
// newest first; ties break by name.
func DiscoverModels(opts DiscoveryOptions) ([]ModelSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	root, err := loader.GetModelDir(opts.Root)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovering models in: %s", root))
	}

	var sources []ModelSource

	if src, ok := probeModelDir(root); ok {
		sources = append(sources, src)
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read models root: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if src, ok := probeModelDir(filepath.Join(root, e.Name())); ok {
				sources = append(sources, src)
				if opts.Verbose {
					opts.Logger(fmt.Sprintf("Found model: %s", src.Dir))
				}
			}
		}
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateModel(&sources[i]); err != nil && opts.Verbose {
				opts.Logger(fmt.Sprintf("Validation failed for %s: %v", sources[i].Dir, err))
			}
		}
		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Name < sources[j].Name
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d models", len(sources)))
	}
	return sources, nil
}

// probeModelDir checks whether dir holds a BOM file and fills in the paths
// of whichever companion files exist.
func probeModelDir(dir string) (ModelSource, bool) {
	bomPath := filepath.Join(dir, loader.DefaultBOMFile)
	info, err := os.Stat(bomPath)
	if err != nil || info.IsDir() {
		return ModelSource{}, false
	}

	src := ModelSource{
		Name:    filepath.Base(dir),
		Dir:     dir,
		BOMPath: bomPath,
		ModTime: info.ModTime(),
	}
	scenePath := filepath.Join(dir, scene.DefaultManifestFile)
	if fi, err := os.Stat(scenePath); err == nil && !fi.IsDir() {
		src.ScenePath = scenePath
	}
	glbPath := filepath.Join(dir, GLBFile)
	if fi, err := os.Stat(glbPath); err == nil && !fi.IsDir() {
		src.GLBPath = glbPath
	}
	return src, true
}

// ValidateModel parses the source's BOM and records the outcome on the
// source. Scene manifests are validated only when present; a missing scene
// is a degraded state, not an invalid source.
func ValidateModel(s *ModelSource) error {
	doc, err := loader.LoadDocumentFromFileWithOptions(s.BOMPath, loader.ParseOptions{
		WarningHandler: func(string) {},
	})
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	s.PartCount = len(doc.AssemblyTree)

	if s.ScenePath != "" {
		if _, err := scene.Load(s.ScenePath); err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
	}

	s.Valid = true
	s.ValidationError = ""
	return nil
}

// SelectBestModel picks the model to open by default: the newest valid
// source. An empty list is an error.
func SelectBestModel(sources []ModelSource) (ModelSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	if len(sources) > 0 {
		return ModelSource{}, fmt.Errorf("no valid model among %d discovered", len(sources))
	}
	return ModelSource{}, fmt.Errorf("no models discovered")
}
