package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/zoec98/story-scraper/config"
	"github.com/zoec98/story-scraper/discover"
	"github.com/zoec98/story-scraper/fetch"
	"github.com/zoec98/story-scraper/story"
	"github.com/zoec98/story-scraper/storydir"
	"github.com/zoec98/story-scraper/transform"
	"github.com/zoec98/story-scraper/webclient"
)

// runPipeline executes the three phases in order: list, fetch, transform.
// A phase failure stops the run; per-file failures inside fetch and
// transform are logged to the story directory and absorbed.
func runPipeline(ctx context.Context, req *story.Request, settings *config.Settings) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logf := func(format string, args ...interface{}) {
		if !req.Quiet {
			fmt.Printf(format+"\n", args...)
		}
	}

	client := webclient.New(settings.ClientConfig())

	logf("List phase: starting")
	discoverer := discover.ForAgent(req.FetchAgent)
	result, err := discoverer.Discover(ctx, client, req.DownloadURL)
	if err != nil {
		return fmt.Errorf("list phase failed: %w", err)
	}
	req.Apply(result.Patch)
	for _, notice := range result.Notices {
		logf("Warning: %s", notice)
	}

	dir := storydir.New(settings.StoriesRoot, req.EffectiveSlug())
	if err := dir.WriteURLList(result.URLs); err != nil {
		return fmt.Errorf("list phase failed: %w", err)
	}
	logf("List phase: discovered %d chapter URL(s)", len(result.URLs))

	logf("Fetch phase: starting")
	strategy := fetch.ForAgent(req.FetchAgent)
	opts := fetch.Options{Force: req.ForceFetch}
	if req.Verbose {
		opts.Progress = progressLogger(logf, "Fetch phase")
	}
	fetched, fetchNotices, err := strategy.Run(ctx, client, dir, opts)
	if err != nil {
		return fmt.Errorf("fetch phase failed: %w", err)
	}
	for _, notice := range fetchNotices {
		logf("Warning: %s", notice)
	}
	logf("Fetch phase: downloaded %d file(s) (out of %d listed)", len(fetched), len(result.URLs))

	logf("Transform phase: starting")
	runner := &transform.Runner{
		Dir:       dir,
		Extractor: transform.ForAgent(req.TransformAgent),
	}
	if req.Verbose {
		runner.Progress = progressLogger(logf, "Transform phase")
	}
	written, err := runner.Run()
	if err != nil {
		return fmt.Errorf("transform phase failed: %w", err)
	}
	logf("Transform phase: wrote %d markdown file(s) for '%s' (%s)",
		len(written), req.EffectiveName(), req.EffectiveSlug())

	return nil
}

func progressLogger(logf func(string, ...interface{}), label string) func(int, int, string, bool) {
	return func(current, total int, dest string, skipped bool) {
		status := "done"
		if skipped {
			status = "skipped"
		}
		logf("%s %d/%d: %s [%s]", label, current, total, filepath.Base(dest), status)
	}
}
