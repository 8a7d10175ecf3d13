package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zoec98/story-scraper/storydir"
	"github.com/zoec98/story-scraper/webclient"
)

// AO3 downloads the work's EPUB once and unpacks its spine documents as
// numbered chapter files. The EPUB is cached next to the story so reruns
// skip the download.
type AO3 struct{}

func (a *AO3) Run(ctx context.Context, client *webclient.Client, dir *storydir.Dir, opts Options) ([]string, []string, error) {
	urls, err := dir.ReadURLList()
	if err != nil {
		return nil, nil, err
	}
	if len(urls) != 1 {
		notices := []string{"AO3: expected exactly one EPUB URL; falling back to generic fetching."}
		files, generic, err := (&Generic{}).Run(ctx, client, dir, opts)
		return files, append(notices, generic...), err
	}

	epubURL := urls[0]
	epubPath := dir.EPUBPath()

	var epubBytes []byte
	if !opts.Force && fileExists(epubPath) {
		epubBytes, err = os.ReadFile(epubPath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		epubBytes, err = client.FetchPage(ctx, epubURL)
		if err != nil {
			dir.AppendFetchLog(epubURL, err)
			return nil, nil, nil
		}
		if err := os.MkdirAll(dir.Path(), 0755); err != nil {
			return nil, nil, err
		}
		if err := os.WriteFile(epubPath, epubBytes, 0644); err != nil {
			return nil, nil, err
		}
	}

	files, err := a.extractEPUB(epubBytes, dir, opts.Progress)
	if err != nil {
		return nil, nil, err
	}
	notice := fmt.Sprintf("AO3: extracted %d chapter(s) from %s.", len(files), filepath.Base(epubPath))
	return files, []string{notice}, nil
}

func (a *AO3) extractEPUB(data []byte, dir *storydir.Dir, progress Progress) ([]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid EPUB structure: %w", err)
	}

	spine, err := resolveSpineDocuments(archive)
	if err != nil {
		return nil, fmt.Errorf("invalid EPUB structure: %w", err)
	}

	var files []string
	total := len(spine)
	n := 0
	for _, item := range spine {
		content, err := readZipFile(archive, item)
		if err != nil {
			continue
		}
		n++
		if err := dir.WriteHTML(n, content); err != nil {
			return nil, err
		}
		dest := dir.HTMLPath(n)
		files = append(files, dest)
		if progress != nil {
			progress(n, total, dest, false)
		}
	}
	return files, nil
}

// epubContainer and epubPackage cover just the pieces of the OCF/OPF schema
// spine resolution needs.
type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Manifest struct {
		Items []struct {
			ID   string `xml:"id,attr"`
			Href string `xml:"href,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// resolveSpineDocuments walks container.xml to the OPF package file and
// returns the spine's document paths in reading order.
func resolveSpineDocuments(archive *zip.Reader) ([]string, error) {
	containerXML, err := readZipFile(archive, "META-INF/container.xml")
	if err != nil {
		return nil, fmt.Errorf("missing container.xml: %w", err)
	}
	var container epubContainer
	if err := xml.Unmarshal(containerXML, &container); err != nil {
		return nil, fmt.Errorf("parsing container.xml: %w", err)
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return nil, fmt.Errorf("rootfile missing full-path attribute")
	}

	opfPath := container.Rootfiles[0].FullPath
	opfXML, err := readZipFile(archive, opfPath)
	if err != nil {
		return nil, fmt.Errorf("missing package file %s: %w", opfPath, err)
	}
	var pkg epubPackage
	if err := xml.Unmarshal(opfXML, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package file: %w", err)
	}

	opfDir := path.Dir(opfPath)
	manifest := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		if item.ID == "" || item.Href == "" {
			continue
		}
		href := item.Href
		if opfDir != "." {
			href = path.Join(opfDir, href)
		}
		manifest[item.ID] = path.Clean(href)
	}

	var ordered []string
	for _, ref := range pkg.Spine.ItemRefs {
		if href, ok := manifest[ref.IDRef]; ok {
			ordered = append(ordered, href)
		}
	}
	return ordered, nil
}

func readZipFile(archive *zip.Reader, name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "/")
	f, err := archive.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var b bytes.Buffer
	if _, err := b.ReadFrom(f); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
