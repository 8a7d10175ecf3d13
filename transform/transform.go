// Package transform converts fetched chapter HTML into Markdown files. Site
// extractors know where the story text lives; everything else runs through
// the generic content cascade.
package transform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zoec98/story-scraper/storydir"
)

// Document is one extracted chapter: an optional heading plus the Markdown
// body.
type Document struct {
	Heading string
	Body    string
}

// Extractor turns one raw chapter file into a Document.
type Extractor interface {
	Extract(raw []byte) (Document, error)
}

// FileNamer lets an extractor choose output basenames from the chapter
// content instead of the input filename.
type FileNamer interface {
	Basename(raw []byte, index int, slug string) string
}

// Orderer lets an extractor reorder the input files before conversion.
type Orderer interface {
	OrderFiles(files []string) []string
}

// Finalizer runs once after all chapters convert, for sidecar files an
// extractor accumulates during the pass.
type Finalizer interface {
	Finalize(dir *storydir.Dir) error
}

// Progress reports one converted chapter.
type Progress func(index, total int, dest string, skipped bool)

// Runner converts every raw chapter of one story.
type Runner struct {
	Dir       *storydir.Dir
	Extractor Extractor
	Progress  Progress
}

// Run converts html/*.html in order. Per-file failures are appended to
// transform.log and skipped; the returned slice holds the written files.
func (r *Runner) Run() ([]string, error) {
	if _, err := os.Stat(r.Dir.HTMLDir()); err != nil {
		return nil, fmt.Errorf("missing HTML directory at %s; run the fetch phase first", r.Dir.HTMLDir())
	}

	files, err := r.Dir.ListHTMLFiles()
	if err != nil {
		return nil, err
	}
	if orderer, ok := r.Extractor.(Orderer); ok {
		files = orderer.OrderFiles(files)
	}

	var written []string
	total := len(files)
	for i, file := range files {
		dest, err := r.convertFile(file, i+1)
		if err != nil {
			r.Dir.AppendTransformLog(filepath.Base(file), err)
			continue
		}
		written = append(written, dest)
		if r.Progress != nil {
			r.Progress(i+1, total, dest, false)
		}
	}

	if finalizer, ok := r.Extractor.(Finalizer); ok {
		if err := finalizer.Finalize(r.Dir); err != nil {
			return written, err
		}
	}
	return written, nil
}

func (r *Runner) convertFile(file string, index int) (string, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}

	doc, err := r.Extractor.Extract(raw)
	if err != nil {
		return "", err
	}

	content := doc.Body
	if doc.Heading != "" {
		content = "# " + doc.Heading + "\n\n" + strings.TrimLeft(doc.Body, " \n")
	}
	if content == "" {
		return "", errors.New("no content extracted")
	}

	basename := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if namer, ok := r.Extractor.(FileNamer); ok {
		basename = namer.Basename(raw, index, r.Dir.Slug)
	}

	if err := r.Dir.WriteMarkdown(basename, content); err != nil {
		return "", err
	}
	return r.Dir.MarkdownPath(basename), nil
}

// ForAgent builds a fresh extractor for an agent name. Unknown or empty
// names, and Inkitt's plain article pages, get the generic cascade.
func ForAgent(name string) Extractor {
	switch name {
	case "ao3":
		return NewAO3()
	case "bdsmlibrary":
		return NewBDSMLibrary()
	case "deviantart":
		return NewDeviantArt()
	case "eroticstories":
		return NewEroticStories()
	case "fanfiction":
		return NewFanFiction()
	case "literotica":
		return NewLiterotica()
	case "mcstories":
		return NewMCStories()
	case "patreon":
		return NewPatreon()
	case "wattpad":
		return NewWattpad()
	default:
		return NewAuto()
	}
}
