package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoec98/story-scraper/config"
	"github.com/zoec98/story-scraper/sites"
	"github.com/zoec98/story-scraper/story"
)

const defaultAgent = "auto"

var (
	nameFlag       string
	slugFlag       string
	authorFlag     string
	fetchAgent     string
	transformAgent string
	packagingAgent string
	forceFetch     bool
	quietMode      bool
	verboseMode    bool
	storiesRoot    string
	configPath     string

	sitesFormat string
)

var rootCmd = &cobra.Command{
	Use:   "storyscraper [flags] URL",
	Short: "Download and package web stories",
	Long: `Downloads a web story chapter by chapter and converts it to Markdown.

Runs three phases against a per-story directory: list (discover chapter
URLs), fetch (download raw HTML), and transform (convert to Markdown).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if quietMode && verboseMode {
			log.Fatal("--quiet and --verbose cannot be combined")
		}

		if configPath == "" {
			if err := config.EnsureExists(""); err != nil {
				log.Fatalf("Failed to create default settings: %v", err)
			}
		}
		settings, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		if storiesRoot != "" {
			settings.StoriesRoot = storiesRoot
		}

		req := buildRequest(args[0])
		if err := runPipeline(cmd.Context(), req, settings); err != nil {
			log.Fatalf("%v", err)
		}
	},
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the supported site rules",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out, err := renderSiteRules(sites.All(), sitesFormat)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(out)
	},
}

// buildRequest resolves the CLI flags against the site profile for the URL.
// Explicit agent flags always win; "auto" defers to the profile.
func buildRequest(downloadURL string) *story.Request {
	req := &story.Request{
		DownloadURL:       downloadURL,
		Name:              nameFlag,
		Slug:              slugFlag,
		Author:            authorFlag,
		ForceFetch:        forceFetch,
		Verbose:           verboseMode && !quietMode,
		Quiet:             quietMode,
		InvocationCommand: strings.Join(os.Args, " "),
	}

	req.ChosenName = nameFlag
	if req.ChosenName == "" {
		req.ChosenName = story.DeriveNameFromURL(downloadURL)
	}
	if slugFlag != "" {
		req.ChosenSlug = story.Slugify(slugFlag)
	} else {
		req.ChosenSlug = story.Slugify(req.ChosenName)
	}
	req.ChosenAuthor = authorFlag

	profile, matched := sites.Classify(downloadURL)
	if matched {
		req.SiteName = profile.Name
		req.SiteDocumentation = profile.Documentation
	}
	req.FetchAgent = mergeAgent(fetchAgent, profile.Discoverer)
	req.TransformAgent = mergeAgent(transformAgent, profile.Extractor)
	req.PackagingAgent = mergeAgent(packagingAgent, profile.Packager)
	return req
}

func mergeAgent(cliValue, siteValue string) string {
	if cliValue != defaultAgent && cliValue != "" {
		return cliValue
	}
	if siteValue != "" {
		return siteValue
	}
	return defaultAgent
}

func init() {
	rootCmd.Flags().StringVar(&nameFlag, "name", "", "Friendly story title; defaults to URL basename")
	rootCmd.Flags().StringVar(&slugFlag, "slug", "", "Directory-friendly slug; defaults to a slugified name")
	rootCmd.Flags().StringVar(&authorFlag, "author", "", "Author name; defaults to site metadata when available")
	rootCmd.Flags().StringVar(&fetchAgent, "fetch-agent", defaultAgent, `Override the fetch agent (default: "auto")`)
	rootCmd.Flags().StringVar(&transformAgent, "transform-agent", defaultAgent, `Override the transform agent (default: "auto")`)
	rootCmd.Flags().StringVar(&packagingAgent, "packaging-agent", defaultAgent, `Override the packaging agent (default: "auto")`)
	rootCmd.Flags().BoolVar(&forceFetch, "force-fetch", false, "Re-download chapters even if HTML files already exist")
	rootCmd.Flags().BoolVar(&quietMode, "quiet", false, "Suppress progress output (errors only)")
	rootCmd.Flags().BoolVar(&verboseMode, "verbose", false, "Show detailed per-file progress for each phase")
	rootCmd.Flags().StringVar(&storiesRoot, "stories-root", "", "Directory holding per-story folders (default from settings)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to the settings file")

	sitesCmd.Flags().StringVar(&sitesFormat, "format", "text", "Output format: text, json, or csv")

	rootCmd.AddCommand(sitesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
