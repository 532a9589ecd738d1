package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ivlev/scenerender/internal/config"
	"github.com/ivlev/scenerender/internal/console"
	"github.com/ivlev/scenerender/internal/encoder"
	"github.com/ivlev/scenerender/internal/engine"
	"github.com/ivlev/scenerender/internal/errs"
	"github.com/ivlev/scenerender/internal/scene"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one render and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	con := console.New(stdout, stderr)

	fs := flag.NewFlagSet("scenerender", flag.ContinueOnError)
	fs.SetOutput(stderr)
	formatPtr := fs.String("format", "tga", "Output format: "+strings.Join(encoder.Formats, ", "))
	workersPtr := fs.Int("workers", 0, "Images rendered in parallel (0 = one per CPU, bounded by free memory)")
	statsPtr := fs.Bool("stats", false, "Print a performance report")
	versionPtr := fs.Bool("version", false, "Print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] <description-file>\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if *versionPtr {
		fmt.Fprintf(stdout, "scenerender %s\n", version)
		return 0
	}
	if fs.NArg() != 1 {
		con.Errorf("%v: expected exactly one description file, got %d", errs.ErrUsage, fs.NArg())
		fs.Usage()
		return 1
	}

	cfg := &config.Config{
		DescriptionPath: fs.Arg(0),
		Format:          *formatPtr,
		Workers:         *workersPtr,
		ShowStats:       *statsPtr,
		BuildVersion:    version,
	}

	if err := render(cfg, con); err != nil {
		con.Errorf("error: %v", err)
		return 1
	}
	return 0
}

func render(cfg *config.Config, con *console.Console) error {
	enc, err := encoder.New(cfg.Format)
	if err != nil {
		return err
	}

	desc, err := scene.Load(cfg.DescriptionPath)
	if err != nil {
		return err
	}
	con.Infof("Description: %s", cfg.DescriptionPath)

	project := engine.NewRenderProject(cfg, desc, enc, con)
	report, err := project.Run(context.Background())
	if err != nil {
		return err
	}

	if cfg.ShowStats {
		report.Print(con.Stdout(), cfg.BuildVersion)
	}
	con.Successf("Done: %d file(s) in %s", len(report.Files), desc.OutputPath)
	return nil
}
