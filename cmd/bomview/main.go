package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/internal/datasource"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/camera"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/config"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/debug"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/highlight"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/loader"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/render"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/selection"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/ui"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/version"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/viewer"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	modelDir := flag.String("model", "", "Model directory containing bom_data.json")
	libraryName := flag.String("library", "", "Open a model library configured in config.yaml")
	favorite := flag.String("favorite", "", "Assign a library to a number key, e.g. 2=plant (2= clears), and exit")
	indexFlag := flag.Bool("index", false, "Reindex the model catalog for the chosen root and exit")
	snapshotPath := flag.String("snapshot", "", "Write a scene snapshot (svg/png) and exit instead of opening the TUI")
	debugFlag := flag.Bool("debug", false, "Enable debug logging to stderr")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: bomview [options]")
		fmt.Println("\nA TUI viewer for converted STEP assemblies.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("bomview %s\n", version.Version)
		os.Exit(0)
	}

	if *debugFlag {
		debug.SetEnabled(true)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		cfg = config.DefaultConfig()
	}

	if *favorite != "" {
		if err := assignFavorite(&cfg, *favorite); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		if err := config.Save(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Updated", config.ConfigPath())
		os.Exit(0)
	}

	dir, err := resolveModelDir(cfg, *modelDir, *libraryName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		fmt.Fprintln(os.Stderr, "Point bomview at a directory containing bom_data.json with --model.")
		os.Exit(1)
	}

	if *indexFlag {
		n, err := datasource.Reindex(dir, func(msg string) { fmt.Println(msg) })
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d models under %s\n", n, dir)
		os.Exit(0)
	}

	eng := viewer.New(
		viewer.WithCameraOptions(
			camera.WithFOV(cfg.Viewer.FOVDegrees*math.Pi/180),
			camera.WithDuration(time.Duration(cfg.Viewer.AnimationMillis)*time.Millisecond),
		),
		viewer.WithClickOptions(
			selection.WithClickWindow(time.Duration(cfg.Viewer.ClickWindowMillis)*time.Millisecond),
		),
		viewer.WithHighlightOptions(
			highlight.WithStyle(highlight.Style{
				Color:     cfg.Viewer.HighlightColor,
				Emissive:  cfg.Viewer.HighlightColor,
				Intensity: cfg.Viewer.HighlightIntensity,
			}),
		),
	)
	if err := eng.LoadModel(context.Background(), dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading model from %s: %v\n", dir, err)
		os.Exit(1)
	}
	for _, w := range eng.Warnings() {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	if *snapshotPath != "" {
		if eng.Scene() == nil {
			fmt.Fprintln(os.Stderr, "Error: no scene.json next to the BOM, nothing to snapshot")
			os.Exit(1)
		}
		err := render.SaveSnapshot(render.SnapshotOptions{
			Path:  *snapshotPath,
			Title: filepath.Base(dir),
			Scene: eng.Scene(),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *snapshotPath)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal (use --snapshot for headless output)")
		os.Exit(1)
	}

	m := ui.NewModel(cfg, eng, dir)
	defer m.Close()

	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running bomview: %v\n", err)
		os.Exit(1)
	}
}

// assignFavorite parses a "N=library" spec and applies it to cfg. An empty
// library name clears the key.
func assignFavorite(cfg *config.Config, spec string) error {
	key, name, ok := strings.Cut(spec, "=")
	if !ok {
		return fmt.Errorf("favorite spec %q is not of the form N=library", spec)
	}
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || n < 1 || n > 9 {
		return fmt.Errorf("favorite key %q must be a digit 1-9", key)
	}
	name = strings.TrimSpace(name)
	if name != "" && cfg.FindLibrary(name) == nil {
		return fmt.Errorf("library %q not in config (%s)", name, config.ConfigPath())
	}
	cfg.SetFavorite(n, name)
	return nil
}

// resolveModelDir picks the model directory: the explicit flag, then a
// configured library, then discovery over the scan paths and cwd.
func resolveModelDir(cfg config.Config, flagDir, libraryName string) (string, error) {
	if flagDir != "" {
		dir, err := loader.GetModelDir(flagDir)
		if err != nil {
			return "", err
		}
		if _, err := loader.FindBOMPath(dir); err != nil {
			return "", fmt.Errorf("no BOM found in %s: %w", dir, err)
		}
		return dir, nil
	}

	if libraryName != "" {
		lib := cfg.FindLibrary(libraryName)
		if lib == nil {
			return "", fmt.Errorf("library %q not in config (%s)", libraryName, config.ConfigPath())
		}
		return selectFromRoot(lib.ResolvedPath())
	}

	roots := append([]string{}, cfg.Discovery.ScanPaths...)
	cwd, err := os.Getwd()
	if err == nil {
		roots = append(roots, cwd)
	}
	var lastErr error
	for _, root := range roots {
		dir, err := selectFromRoot(root)
		if err == nil {
			return dir, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no scan paths configured")
	}
	return "", lastErr
}

func selectFromRoot(root string) (string, error) {
	sources, err := datasource.DiscoverModels(datasource.DiscoveryOptions{
		Root:                   root,
		ValidateAfterDiscovery: true,
		Verbose:                debug.Enabled(),
		Logger:                 func(msg string) { debug.Log("%s", msg) },
	})
	if err != nil {
		return "", err
	}
	best, err := datasource.SelectBestModel(sources)
	if err != nil {
		return "", fmt.Errorf("no usable model under %s: %w", root, err)
	}
	return best.Dir, nil
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set BOMVIEW_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("BOMVIEW_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
