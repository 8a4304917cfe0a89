// Command ngarchive is a small CLI exercising the archive engine
// end-to-end: it builds a demo geom.Mesh, saves it through either wire
// codec into a bbolt-backed named snapshot (internal/stash), and loads
// named snapshots back, reporting what it read. It is ambient scaffolding
// around the engine (spec.md §1 treats byte-stream sinks/sources, and by
// extension any CLI built on top of them, as an external collaborator),
// not part of the archive engine's own contract.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"netgen.dev/ngcore/archive"
	"netgen.dev/ngcore/geom"
	"netgen.dev/ngcore/internal/config"
	"netgen.dev/ngcore/internal/stash"
	"netgen.dev/ngcore/wire/binary"
	"netgen.dev/ngcore/wire/text"
)

var (
	configPath = flag.String("config", "", "path to ngarchive.yaml (optional; falls back to $NGARCHIVE_CONFIG)")
	encoding   = flag.String("encoding", "", "wire encoding: binary or text (overrides config)")
	stashPath  = flag.String("stash", "", "path to the bbolt snapshot database (overrides config)")
)

func main() {
	flag.Parse()
	log := slog.Default()

	cfg := config.Default()
	path := *configPath
	if path == "" {
		path = config.GetEnv("NGARCHIVE_CONFIG", "")
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Error("loading config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *encoding != "" {
		cfg.DefaultEncoding = config.Encoding(*encoding)
	}
	if *stashPath != "" {
		cfg.StashPath = *stashPath
	}
	if err := cfg.ApplyVersions(); err != nil {
		log.Error("applying versions", "err", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	lockTimeout, err := config.GetEnvInt("NGARCHIVE_STASH_LOCK_TIMEOUT_SECONDS", 5)
	if err != nil {
		log.Error("parsing lock timeout", "err", err)
		os.Exit(1)
	}
	store, err := stash.Open(cfg.StashPath, time.Duration(lockTimeout)*time.Second, log)
	if err != nil {
		log.Error("opening stash", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	var runErr error
	switch args[0] {
	case "save":
		runErr = runSave(store, cfg, log, args[1:])
	case "load":
		runErr = runLoad(store, cfg, log, args[1:])
	case "list":
		runErr = runList(store)
	case "delete":
		runErr = runDelete(store, log, args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if runErr != nil {
		log.Error("ngarchive", "err", runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ngarchive [flags] save|load|list|delete <name>")
	flag.PrintDefaults()
}

func demoMesh() *geom.Mesh {
	name := "unit-sphere"
	return &geom.Mesh{
		Points: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Shapes: []geom.Primitive{
			&geom.Sphere{Radius: 1, Center: [3]float64{0, 0, 0}, Name: &name},
			&geom.Box{Extents: [3]float64{2, 2, 2}},
		},
		Attributes: map[string]string{"units": "meters"},
	}
}

func runSave(store *stash.Store, cfg *config.Config, log *slog.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("save requires exactly one snapshot name")
	}
	var buf bytes.Buffer
	var sink archive.Sink
	var closer interface{ Close() error }
	switch cfg.DefaultEncoding {
	case config.Text:
		w := text.NewWriter(&buf)
		sink, closer = w, w
	default:
		w := binary.NewWriter(&buf)
		sink, closer = w, w
	}

	a, err := archive.NewWriter(sink)
	if err != nil {
		return fmt.Errorf("opening writer archive: %w", err)
	}
	mesh := demoMesh()
	if err := mesh.Serialize(a); err != nil {
		return fmt.Errorf("serializing mesh: %w", err)
	}
	// Flush the codec's internal buffer (spec.md §4.4: "destruction of a
	// writer must flush the buffer") before reading back what it wrote.
	if err := closer.Close(); err != nil {
		return fmt.Errorf("flushing encoder: %w", err)
	}
	return store.Save(args[0], buf.Bytes())
}

func runLoad(store *stash.Store, cfg *config.Config, log *slog.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("load requires exactly one snapshot name")
	}
	data, ok, err := store.Load(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no snapshot named %q", args[0])
	}

	var source archive.Source
	switch cfg.DefaultEncoding {
	case config.Text:
		source = text.NewReader(bytes.NewReader(data))
	default:
		source = binary.NewReader(bytes.NewReader(data))
	}

	a, err := archive.NewReader(source)
	if err != nil {
		return fmt.Errorf("opening reader archive: %w", err)
	}
	var mesh geom.Mesh
	if err := mesh.Serialize(a); err != nil {
		return fmt.Errorf("deserializing mesh: %w", err)
	}
	fmt.Printf("points=%d shapes=%d attributes=%v\n", len(mesh.Points)/3, len(mesh.Shapes), mesh.Attributes)
	for i, s := range mesh.Shapes {
		fmt.Printf("  shape[%d]: %T bounding=%.3f\n", i, s, s.BoundingMeasure())
	}
	return nil
}

func runList(store *stash.Store) error {
	names, err := store.List()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func runDelete(store *stash.Store, log *slog.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete requires exactly one snapshot name")
	}
	return store.Delete(args[0])
}
