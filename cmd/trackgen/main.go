// trackgen is a CLI utility for building and exporting track layouts.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-tracks/internal/config"
	"github.com/Faultbox/midgard-tracks/internal/logger"
	"github.com/Faultbox/midgard-tracks/internal/preview"
	"github.com/Faultbox/midgard-tracks/internal/track"
	"github.com/Faultbox/midgard-tracks/pkg/formats"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("config: %v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatalf("logger: %v", err)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "new":
		cmdNew(cfg, args)
	case "add":
		cmdAdd(cfg, args)
	case "close":
		cmdClose(cfg, args)
	case "clear":
		cmdClear(cfg, args)
	case "split":
		cmdSplit(cfg, args)
	case "branch", "bif":
		cmdBranch(cfg, args)
	case "build":
		cmdBuild(cfg, args)
	case "export":
		cmdExport(cfg, args)
	case "preview":
		cmdPreview(cfg, args)
	case "info":
		cmdInfo(cfg, args)
	case "list", "ls":
		cmdList(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`trackgen - procedural track builder

Usage:
  trackgen [global flags] <command> [options]

Commands:
  new [-segments N] [-closed]        Start a curve, optionally closed
  add <curve> [N]                    Append N splines (default 1)
  close <curve>                      Join the last node back to the first
  clear <curve>                      Remove every node of a curve
  split <curve> <spline>             Split a spline at its midpoint
  branch <curve>                     Add a bifurcation at the end of a curve
  build                              Re-extrude and save every object
  export <out.obj>                   Write all meshes as Wavefront OBJ
  preview <out.webp|out.png>         Render a top-down preview image
  info [-yaml]                       Show layout statistics
  list                               List saved curves and bifurcations

Global flags:
  -save-dir DIR     Directory holding saved tracks
  -config FILE      Config file
  -debug            Enable debug logging

Examples:
  trackgen new -segments 6 -closed
  trackgen branch curve-0
  trackgen preview track.webp`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// openTrack loads the saved track from cfg.Data.SaveDir.
func openTrack(cfg *config.Config) *track.Track {
	t := track.New(
		track.SettingsFromConfig(cfg.Track),
		nil,
		track.NewFileStore(cfg.Data.SaveDir),
		logger.Component("track"),
	)
	if err := t.LoadAll(); err != nil {
		fatalf("%v", err)
	}
	return t
}

func saveTrack(t *track.Track) {
	if err := t.Tick(); err != nil {
		fatalf("%v", err)
	}
	if err := t.SaveAll(); err != nil {
		fatalf("%v", err)
	}
}

func mustCurve(t *track.Track, name string) *track.Curve {
	c := t.Curve(name)
	if c == nil {
		fatalf("no curve named %q", name)
	}
	return c
}

func cmdNew(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	segments := fs.Int("segments", 1, "Number of splines to add")
	closed := fs.Bool("closed", false, "Close the curve")
	fs.Parse(args)

	t := openTrack(cfg)
	at := track.IdentityPose()
	if curves := t.Curves(); len(curves) > 0 {
		at = curves[len(curves)-1].Tail()
	}
	c := t.NewCurve(at)
	for range *segments {
		if err := c.AddSpline(); err != nil {
			fatalf("%v", err)
		}
	}
	if *closed {
		if err := c.CloseCurve(); err != nil {
			fatalf("%v", err)
		}
	}
	saveTrack(t)
	fmt.Println(c.Name)
}

func cmdAdd(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trackgen add <curve> [N]")
		os.Exit(1)
	}
	n := 1
	if len(args) > 1 {
		var err error
		if n, err = strconv.Atoi(args[1]); err != nil || n < 1 {
			fatalf("invalid spline count %q", args[1])
		}
	}

	t := openTrack(cfg)
	c := mustCurve(t, args[0])
	for range n {
		if err := c.AddSpline(); err != nil {
			fatalf("%s: %v", c.Name, err)
		}
	}
	saveTrack(t)
	fmt.Printf("%s: %d nodes\n", c.Name, c.NodeCount())
}

func cmdClose(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trackgen close <curve>")
		os.Exit(1)
	}
	t := openTrack(cfg)
	c := mustCurve(t, args[0])
	if err := c.CloseCurve(); err != nil {
		fatalf("%s: %v", c.Name, err)
	}
	saveTrack(t)
	fmt.Printf("%s: closed with %d splines\n", c.Name, len(c.Splines()))
}

func cmdClear(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trackgen clear <curve>")
		os.Exit(1)
	}
	t := openTrack(cfg)
	c := mustCurve(t, args[0])
	c.ClearCurve()
	saveTrack(t)
	fmt.Printf("%s: cleared\n", c.Name)
}

func cmdSplit(cfg *config.Config, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: trackgen split <curve> <spline>")
		os.Exit(1)
	}
	i, err := strconv.Atoi(args[1])
	if err != nil {
		fatalf("invalid spline index %q", args[1])
	}
	t := openTrack(cfg)
	c := mustCurve(t, args[0])
	if err := c.SplitSpline(i); err != nil {
		fatalf("%s: %v", c.Name, err)
	}
	saveTrack(t)
	fmt.Printf("%s: %d splines\n", c.Name, len(c.Splines()))
}

func cmdBranch(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trackgen branch <curve>")
		os.Exit(1)
	}
	t := openTrack(cfg)
	c := mustCurve(t, args[0])
	b, err := t.Branch(c.Tail())
	if err != nil {
		fatalf("%v", err)
	}
	saveTrack(t)
	fmt.Printf("%s: left %s, right %s\n", b.Name, b.NextLeft.Name, b.NextRight.Name)
}

func cmdBuild(cfg *config.Config, args []string) {
	t := openTrack(cfg)
	log := logger.Component("build")

	total := len(t.Curves()) + len(t.Bifurcations())
	bar := progressbar.Default(int64(total), "extruding")

	// Bifurcations weld into their branches before those are extruded.
	for _, b := range t.Bifurcations() {
		if err := b.Tick(); err != nil {
			fatalf("%s: %v", b.Name, err)
		}
		bar.Add(1)
	}
	for _, c := range t.Curves() {
		c.Extrude()
		bar.Add(1)
	}
	bar.Finish()

	if err := t.SaveAll(); err != nil {
		fatalf("%v", err)
	}
	st := t.Stats()
	log.Info("build complete",
		zap.Int("objects", total),
		zap.Int("vertices", st.Vertices),
		zap.Int("triangles", st.Triangles))
	fmt.Printf("Built %d objects: %d vertices, %d triangles\n", total, st.Vertices, st.Triangles)
}

func cmdExport(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trackgen export <out.obj>")
		os.Exit(1)
	}
	t := openTrack(cfg)
	if err := t.Tick(); err != nil {
		fatalf("%v", err)
	}

	var meshes []formats.OBJMesh
	for _, nm := range t.Meshes() {
		if len(nm.Mesh.Indices) == 0 {
			continue
		}
		meshes = append(meshes, nm.Mesh.OBJ(nm.Name))
	}

	f, err := os.Create(args[0])
	if err != nil {
		fatalf("%v", err)
	}
	defer f.Close()
	if err := formats.WriteOBJ(f, meshes); err != nil {
		fatalf("writing %s: %v", args[0], err)
	}
	fmt.Printf("Exported: %s (%d meshes)\n", args[0], len(meshes))
}

func cmdPreview(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trackgen preview <out.webp|out.png>")
		os.Exit(1)
	}
	t := openTrack(cfg)
	if err := t.Tick(); err != nil {
		fatalf("%v", err)
	}

	var meshes []*track.Mesh
	for _, nm := range t.Meshes() {
		meshes = append(meshes, nm.Mesh)
	}

	opts := preview.OptionsFromConfig(cfg.Preview)
	opts.Logger = logger.Component("preview")
	img := preview.Render(meshes, opts)

	def, err := preview.ParseFormat(cfg.Preview.Format)
	if err != nil {
		def = preview.FormatWebP
	}
	format := preview.FormatFromPath(args[0], def)
	if err := preview.WriteFile(args[0], img, format); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Rendered: %s (%dx%d %s)\n", args[0], img.Bounds().Dx(), img.Bounds().Dy(), format)
}

// info is the report printed by the info command.
type info struct {
	SaveDir      string       `yaml:"save_dir"`
	Curves       int          `yaml:"curves"`
	Bifurcations int          `yaml:"bifurcations"`
	Nodes        int          `yaml:"nodes"`
	Splines      int          `yaml:"splines"`
	Vertices     int          `yaml:"vertices"`
	Triangles    int          `yaml:"triangles"`
	Length       float32      `yaml:"length"`
	Index        *track.Index `yaml:"index"`
}

func cmdInfo(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	asYAML := fs.Bool("yaml", false, "Print the report as YAML")
	fs.Parse(args)

	t := openTrack(cfg)
	if err := t.Tick(); err != nil {
		fatalf("%v", err)
	}
	st := t.Stats()
	rep := info{
		SaveDir:      cfg.Data.SaveDir,
		Curves:       len(t.Curves()),
		Bifurcations: len(t.Bifurcations()),
		Nodes:        st.Nodes,
		Splines:      st.Splines,
		Vertices:     st.Vertices,
		Triangles:    st.Triangles,
		Length:       st.Length,
		Index:        t.Index(),
	}

	if *asYAML {
		out, err := yaml.Marshal(rep)
		if err != nil {
			fatalf("%v", err)
		}
		os.Stdout.Write(out)
		return
	}

	fmt.Printf("Save dir:     %s\n", rep.SaveDir)
	fmt.Printf("Curves:       %d\n", rep.Curves)
	fmt.Printf("Bifurcations: %d\n", rep.Bifurcations)
	fmt.Printf("Nodes:        %d\n", rep.Nodes)
	fmt.Printf("Splines:      %d\n", rep.Splines)
	fmt.Printf("Vertices:     %d\n", rep.Vertices)
	fmt.Printf("Triangles:    %d\n", rep.Triangles)
	fmt.Printf("Length:       %.1f\n", rep.Length)
	fmt.Println()
	for _, c := range t.Curves() {
		cs := c.Stats()
		closed := ""
		if c.Closed() {
			closed = " (closed)"
		}
		fmt.Printf("  %-12s %3d nodes %3d splines %8.1f%s\n", c.Name, cs.Nodes, cs.Splines, cs.Length, closed)
	}
	for _, b := range t.Bifurcations() {
		right, left := "-", "-"
		if b.NextRight != nil {
			right = b.NextRight.Name
		}
		if b.NextLeft != nil {
			left = b.NextLeft.Name
		}
		fmt.Printf("  %-12s right=%s left=%s\n", b.Name, right, left)
	}
}

func cmdList(cfg *config.Config, args []string) {
	store := track.NewFileStore(cfg.Data.SaveDir)
	for _, kind := range []formats.TrackKind{formats.TrackKindCurve, formats.TrackKindBifurcation} {
		names, err := store.List(kind)
		if err != nil {
			fatalf("%v", err)
		}
		for _, name := range names {
			fmt.Printf("%-12s %s\n", kind, name)
		}
	}
}
