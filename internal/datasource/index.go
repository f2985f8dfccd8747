package datasource

import (
	"fmt"
	"path/filepath"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/loader"
)

// Reindex rebuilds the catalog at the models root from what is actually on
// disk. Returns the number of models indexed.
func Reindex(root string, logger func(string)) (int, error) {
	if logger == nil {
		logger = func(string) {}
	}

	resolved, err := loader.GetModelDir(root)
	if err != nil {
		return 0, err
	}
	sources, err := DiscoverModels(DiscoveryOptions{
		Root:                   resolved,
		ValidateAfterDiscovery: true,
		Verbose:                true,
		Logger:                 logger,
	})
	if err != nil {
		return 0, err
	}

	cat, err := OpenCatalog(filepath.Join(resolved, CatalogFile))
	if err != nil {
		return 0, err
	}
	defer cat.Close()

	indexed := 0
	for _, src := range sources {
		doc, err := loader.LoadDocumentFromFile(src.BOMPath)
		if err != nil {
			logger(fmt.Sprintf("Skipping %s: %v", src.Name, err))
			continue
		}
		assemblies := 0
		for _, rec := range doc.AssemblyTree {
			if rec.IsAssembly {
				assemblies++
			}
		}
		entry := CatalogEntry{
			Name:          src.Name,
			Dir:           src.Dir,
			SourceFile:    doc.Filename,
			PartCount:     len(doc.AssemblyTree) - assemblies,
			AssemblyCount: assemblies,
			BOMModTime:    src.ModTime,
		}
		if err := cat.Upsert(entry); err != nil {
			return indexed, err
		}
		indexed++
	}
	return indexed, nil
}
