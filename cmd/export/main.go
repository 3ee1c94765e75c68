package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"photobook-render/internal/app"
	"photobook-render/internal/config"
	"photobook-render/internal/design"
	"photobook-render/internal/export"
	"photobook-render/internal/exportconfig"
	"photobook-render/internal/logger"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json or .yaml)")
	setFile := flag.String("set", "", "Path to design set JSON (required)")
	format := flag.String("format", "", "Output format: png, jpeg, webp, pdf (default: png)")
	dpi := flag.Float64("dpi", 0, "Target DPI (default: category default or 300)")
	preset := flag.String("preset", "", "DPI preset value from the category config")
	bleed := flag.Bool("bleed", false, "Include bleed area")
	category := flag.String("category", "", "Product category (default: from design set)")
	workers := flag.Int("workers", 0, "Designs rendered concurrently (default: 1)")
	dataDir := flag.String("data", "", "Base directory for relative paths (default: cwd)")
	outputDir := flag.String("output", "", "Output directory (default: exports)")
	quality := flag.Int("quality", 0, "JPEG quality 1-100 (default: 95)")
	endpoint := flag.String("config-endpoint", "", "Export configuration service URL")
	redisAddr := flag.String("redis", "", "Redis address for the shared image cache")

	flag.Parse()

	if *setFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -set is required.")
		os.Exit(2)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		BaseDir:        *dataDir,
		OutputDir:      *outputDir,
		Format:         *format,
		TargetDPI:      *dpi,
		IncludeBleed:   *bleed,
		Quality:        *quality,
		Workers:        *workers,
		ConfigEndpoint: *endpoint,
		RedisAddr:      *redisAddr,
	})

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	data, err := os.ReadFile(*setFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading design set: %v\n", err)
		os.Exit(1)
	}
	set, err := design.ParseSet(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *category != "" {
		set.Category = *category
	}

	f, err := exportconfig.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := app.New(ctx, cfg, log)
	defer a.Close()

	opts := export.Options{
		Format:       f,
		TargetDPI:    *dpi,
		IncludeBleed: cfg.IncludeBleed,
		Basename:     set.Name,
		Quality:      cfg.Quality,
		Pacing:       cfg.Pacing(),
		Workers:      cfg.Workers,
	}
	if set.Category != "" {
		catCfg, err := a.Configs.Get(ctx, set.Category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading export config: %v\n", err)
			os.Exit(1)
		}
		if p, ok := catCfg.Preset(*preset); ok && opts.TargetDPI <= 0 {
			opts.TargetDPI = p.DPI
		}
		if opts, err = opts.WithConfig(catCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}
	if opts.TargetDPI <= 0 {
		opts.TargetDPI = cfg.TargetDPI
	}

	out, err := export.NewDirOutput(cfg.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Print summary
	fmt.Printf("Photobook export → %s\n", strings.ToUpper(string(f)))
	fmt.Printf("Designs: %d, DPI: %.0f, Bleed: %v, Workers: %d\n", len(set.Designs), opts.TargetDPI, opts.IncludeBleed, opts.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	res, err := a.Pipeline.Export(ctx, set.Designs, set.Variant, opts, out, func(cur, total int) {
		fmt.Printf("[%d/%d] %.1fs\n", cur, total, time.Since(start).Seconds())
	})
	fmt.Println("------------------------------------------------------------")
	if err != nil {
		var ee *export.ExportError
		if errors.As(err, &ee) && ee.Unit > 0 {
			fmt.Fprintf(os.Stderr, "Failed at design %d (%s): %v\n", ee.Unit, ee.DesignID, ee.Err)
		} else {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Done in %.1fs\n", res.Elapsed.Seconds())
	for _, art := range res.Artifacts {
		fmt.Printf("  %s (%d bytes)\n", art.Name, art.Bytes)
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := export.WriteManifest(manifestPath, res); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}
}
