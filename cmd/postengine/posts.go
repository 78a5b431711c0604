package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/silicogen/postengine/content"
)

var (
	postsFormat string
	postsTag    string
	postsBody   bool
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List the posts the content directory produces",
	Long: `posts builds the catalog exactly as the server would and prints it. Use it to
check dates, slugs and tags before publishing, or to export the catalog.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := loadCatalog(appConfig, func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		})
		if err != nil {
			return err
		}
		for _, col := range content.DuplicateSlugs(posts) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: slug %q is used by %s; %s wins\n",
				col.Slug, strings.Join(col.Sources, ", "), col.Sources[0])
		}
		posts = content.FilterByTag(posts, postsTag)
		if !postsBody {
			for i := range posts {
				posts[i].Content = ""
			}
		}
		return writePosts(cmd.OutOrStdout(), posts, postsFormat)
	},
}

func init() {
	postsCmd.Flags().StringVarP(&postsFormat, "format", "f", "table", "output format: table, json or yaml")
	postsCmd.Flags().StringVar(&postsTag, "tag", "", "only list posts with this tag")
	postsCmd.Flags().BoolVar(&postsBody, "body", false, "include post bodies in json and yaml output")
}

// loadCatalog reads and builds the catalog described by cfg.
func loadCatalog(cfg fileConfig, onParseError func(error)) ([]content.Post, error) {
	parse, err := content.NewParser(cfg.FrontmatterMode, onParseError)
	if err != nil {
		return nil, err
	}
	docs, err := content.LoadDir(os.DirFS(cfg.ContentDir), ".")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.ContentDir, err)
	}
	b := content.Builder{FallbackAuthor: cfg.FallbackAuthor, Parse: parse}
	return b.Build(docs), nil
}

func writePosts(w io.Writer, posts []content.Post, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(posts)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(posts); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tSLUG\tTITLE\tREAD\tTAGS")
		for _, p := range posts {
			date := p.Date
			if date == "" {
				date = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d min\t%s\n", date, p.Slug, p.Title, p.ReadTime, strings.Join(p.Tags, ","))
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
}
