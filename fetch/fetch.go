// Package fetch downloads every URL in a story's download list into numbered
// raw chapter files. Site strategies reshape what one "chapter" means: page
// assembly, continuation stitching, or unpacking an EPUB.
package fetch

import (
	"context"
	"os"

	"github.com/zoec98/story-scraper/storydir"
	"github.com/zoec98/story-scraper/webclient"
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Progress reports one processed chapter. skipped is true when the file
// already existed and no download happened.
type Progress func(index, total int, dest string, skipped bool)

// Options control a fetch run.
type Options struct {
	// Force redownloads chapters whose files already exist.
	Force bool

	Progress Progress
}

// Strategy runs the fetch phase for one story.
type Strategy interface {
	Run(ctx context.Context, client *webclient.Client, dir *storydir.Dir, opts Options) (files []string, notices []string, err error)
}

// ChapterFunc downloads one chapter's raw HTML. Site strategies substitute
// their own assembly logic here.
type ChapterFunc func(ctx context.Context, client *webclient.Client, url string) ([]byte, error)

// Generic is the default strategy: one listed URL becomes one file. Failed
// downloads are logged and skipped so one dead chapter does not abort the
// story.
type Generic struct {
	Chapter ChapterFunc
}

func (g *Generic) Run(ctx context.Context, client *webclient.Client, dir *storydir.Dir, opts Options) ([]string, []string, error) {
	urls, err := dir.ReadURLList()
	if err != nil {
		return nil, nil, err
	}

	chapter := g.Chapter
	if chapter == nil {
		chapter = func(ctx context.Context, client *webclient.Client, url string) ([]byte, error) {
			return client.FetchPage(ctx, url)
		}
	}

	var files []string
	total := len(urls)
	for i, url := range urls {
		dest := dir.HTMLPath(i + 1)
		if !opts.Force && fileExists(dest) {
			if opts.Progress != nil {
				opts.Progress(i+1, total, dest, true)
			}
			continue
		}

		data, err := chapter(ctx, client, url)
		if err != nil {
			if ctx.Err() != nil {
				return files, nil, ctx.Err()
			}
			dir.AppendFetchLog(url, err)
			continue
		}
		if err := dir.WriteHTML(i+1, data); err != nil {
			return files, nil, err
		}
		files = append(files, dest)
		if opts.Progress != nil {
			opts.Progress(i+1, total, dest, false)
		}
	}
	return files, nil, nil
}

// ForAgent resolves the fetch strategy for an agent name. Unknown names get
// the generic single-page strategy.
func ForAgent(name string) Strategy {
	switch name {
	case "literotica":
		return &Generic{Chapter: literoticaChapter}
	case "eroticstories":
		return &Generic{Chapter: stitchEroticStoriesChapter}
	case "ao3":
		return &AO3{}
	default:
		return &Generic{}
	}
}
