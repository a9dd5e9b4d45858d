// Command audiohist renders amplitude-distribution histograms of audio files.
//
// Usage:
//
//	audiohist [flags] [path]
//
// The path may be a directory (every matching file in it forms one chart) or
// a single audio file. Without a path the current directory is used.
//
// Examples:
//
//	audiohist
//	audiohist album/
//	audiohist -r -c 4 music/
//	audiohist -m '(?i)\.wav$' -size 12.8x7.2 -dpi 150 track.wav
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/audiohist/aggregate"
	"github.com/cwbudde/audiohist/render"
)

type config struct {
	input       string
	outName     string
	recursive   bool
	concurrency int
	width       float64
	height      float64
	dpi         int
	match       *regexp.Regexp
	overwrite   bool
}

func main() {
	log.SetFlags(0)

	cfg, err := parseFlags()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func parseFlags() (config, error) {
	var (
		outName     = flag.String("f", "histogram.png", "output image filename")
		recursive   = flag.Bool("r", false, "recursively process directories")
		concurrency = flag.Int("c", 1, "maximum number of concurrent directories")
		size        = flag.String("size", "10.24x6.4", "output image size in inches, WIDTHxHEIGHT")
		dpi         = flag.Int("dpi", 100, "DPI for the output image")
		match       = flag.String("m", `(?i)\.flac$`, "regular expression to match files")
		overwrite   = flag.Bool("o", false, "overwrite existing image files")
	)

	flag.Parse()

	cfg := config{
		input:       ".",
		outName:     *outName,
		recursive:   *recursive,
		concurrency: *concurrency,
		dpi:         *dpi,
		overwrite:   *overwrite,
	}

	if flag.NArg() > 0 {
		cfg.input = flag.Arg(0)
	}

	var err error

	cfg.width, cfg.height, err = parseSize(*size)
	if err != nil {
		return config{}, err
	}

	if cfg.dpi <= 0 {
		return config{}, fmt.Errorf("dpi must be positive, got %d", cfg.dpi)
	}

	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}

	cfg.match, err = regexp.Compile(*match)
	if err != nil {
		return config{}, fmt.Errorf("invalid regular expression: %w", err)
	}

	return cfg, nil
}

// parseSize parses "WIDTHxHEIGHT" in inches, requiring both to be positive.
func parseSize(s string) (width, height float64, err error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q, expected WIDTHxHEIGHT", s)
	}

	width, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size width %q", parts[0])
	}

	height, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size height %q", parts[1])
	}

	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("size dimensions must be positive, got %gx%g", width, height)
	}

	return width, height, nil
}

func run(cfg config) error {
	info, err := os.Stat(cfg.input)
	if err != nil {
		return fmt.Errorf("no file or directory named %q", cfg.input)
	}

	agg := aggregate.New()
	rend := render.New(render.WithSize(cfg.width, cfg.height), render.WithDPI(cfg.dpi))

	if !info.IsDir() {
		return processFile(cfg, agg, rend)
	}

	dirs := []string{cfg.input}

	if cfg.recursive {
		dirs, err = collectDirs(cfg.input)
		if err != nil {
			return err
		}
	}

	// One bad directory must not halt the rest: per-directory failures are
	// logged and the walk continues.
	var g errgroup.Group
	g.SetLimit(cfg.concurrency)

	for _, dir := range dirs {
		g.Go(func() error {
			if err := processDir(cfg, agg, rend, dir); err != nil {
				log.Printf("Error: %v", err)
			}

			return nil
		})
	}

	return g.Wait()
}

// collectDirs returns root and every directory below it.
func collectDirs(root string) ([]string, error) {
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			dirs = append(dirs, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return dirs, nil
}

// processFile charts a single audio file, writing the image next to it.
func processFile(cfg config, agg *aggregate.Aggregator, rend *render.Renderer) error {
	base := filepath.Base(cfg.input)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	outPath := filepath.Join(filepath.Dir(cfg.input), cfg.outName)

	if !cfg.overwrite {
		if _, err := os.Stat(outPath); err == nil {
			return nil
		}
	}

	info, err := agg.Aggregate([]string{cfg.input})
	if err != nil {
		return err
	}

	if err := rend.Save(outPath, info, title); err != nil {
		return err
	}

	log.Printf("Processed: %s", title)

	return nil
}

// processDir charts all matching files directly inside dir as one file set.
// Directories with no matches, or whose output already exists, are skipped.
func processDir(cfg config, agg *aggregate.Aggregator, rend *render.Renderer, dir string) error {
	outPath := filepath.Join(dir, cfg.outName)

	if !cfg.overwrite {
		if _, err := os.Stat(outPath); err == nil {
			return nil
		}
	}

	files, err := matchFiles(dir, cfg.match)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return nil
	}

	title := filepath.Base(dir)

	info, err := agg.Aggregate(files)
	if err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}

	if err := rend.Save(outPath, info, title); err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}

	log.Printf("Processed: %s", title)

	return nil
}

// matchFiles lists the regular files in dir whose names match re, sorted for
// deterministic processing order.
func matchFiles(dir string, re *regexp.Regexp) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []string

	for _, e := range entries {
		if e.IsDir() || !re.MatchString(e.Name()) {
			continue
		}

		files = append(files, filepath.Join(dir, e.Name()))
	}

	sort.Strings(files)

	return files, nil
}
