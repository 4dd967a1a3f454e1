package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/quizgest/internal/extract"
	"github.com/dgallion1/quizgest/internal/media"
	"golang.org/x/sync/errgroup"
)

type result struct {
	File      string                   `json:"file"`
	Questions []extract.QuestionRecord `json:"questions,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

func main() {
	var (
		category    = flag.String("category", "", "Category stored on every question (required)")
		duration    = flag.Int("duration", 0, "Quiz duration in minutes")
		subject     = flag.String("subject", "", "Subject stored instead of the duration")
		mediaDir    = flag.String("media-dir", "", "Directory for extracted images; empty records names only")
		markerClass = flag.String("marker-class", extract.DefaultMarkerClass, "HTML class marking the correct answer")
		durations   = flag.String("durations", "30,60,90", "Accepted durations, comma separated")
		concurrency = flag.Int("concurrency", 4, "Files processed at once")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s -category C (-duration N | -subject S) [flags] files...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	allowed, err := parseDurations(*durations)
	if err != nil {
		log.Error("invalid -durations", "error", err)
		os.Exit(2)
	}
	meta := extract.Metadata{
		Category: strings.TrimSpace(*category),
		Duration: *duration,
		Subject:  strings.TrimSpace(*subject),
	}
	if err := extract.ValidateMetadata(meta, allowed); err != nil {
		log.Error("invalid metadata", "error", err)
		os.Exit(2)
	}

	var sink extract.ImageSink
	if *mediaDir != "" {
		store, err := media.NewDirStore(*mediaDir, "")
		if err != nil {
			log.Error("media dir", "error", err)
			os.Exit(1)
		}
		sink = media.Sink(store)
	}
	engine := extract.New(sink, log, extract.Options{MarkerClass: *markerClass, Durations: allowed})

	results := run(context.Background(), engine, files, meta, *concurrency)

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			log.Error("write output", "error", err)
			os.Exit(1)
		}
	}
	if failed > 0 {
		log.Error("some files failed", "failed", failed, "total", len(results))
		os.Exit(1)
	}
}

// run extracts every file with at most limit files in flight. Results keep
// the order of files; one failing file does not stop the others.
func run(ctx context.Context, engine *extract.Engine, files []string, meta extract.Metadata, limit int) []result {
	if limit <= 0 {
		limit = 1
	}
	results := make([]result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range files {
		g.Go(func() error {
			results[i] = extractFile(ctx, engine, path, meta)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func extractFile(ctx context.Context, engine *extract.Engine, path string, meta extract.Metadata) result {
	res := result{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	records, err := engine.ExtractBytes(ctx, data, filepath.Base(path), meta)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Questions = records
	return res
}

func parseDurations(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%q is not a positive integer", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no durations given")
	}
	return out, nil
}
