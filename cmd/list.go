package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	listJSON   bool
	listDrafts bool
	listTag    string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List discovered posts",
	Long: `List prints the discovered posts newest first, with their slug,
date, draft status, and word count. Use --json for machine-readable output.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	listCmd.Flags().BoolVar(&listDrafts, "drafts", true, "include draft posts")
	listCmd.Flags().StringVar(&listTag, "tag", "", "only posts with this tag")
	rootCmd.AddCommand(listCmd)
}

// listEntry is the JSON shape of one post row.
type listEntry struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Draft     bool      `json:"draft"`
	Tags      []string  `json:"tags,omitempty"`
	File      string    `json:"file"`
	WordCount int       `json:"word_count"`
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.scanContent(); err != nil {
		return fmt.Errorf("scanning content: %w", err)
	}

	posts := env.registry.All()
	if listTag != "" {
		posts = env.registry.ByTag(listTag)
	}

	entries := make([]listEntry, 0, len(posts))
	for _, post := range posts {
		if post.Draft && !listDrafts {
			continue
		}
		entries = append(entries, listEntry{
			Slug:      post.Slug,
			Title:     post.Title,
			Date:      post.Date,
			Draft:     post.Draft,
			Tags:      post.Tags,
			File:      post.FilePath,
			WordCount: post.WordCount,
		})
	}

	if listJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("no posts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSLUG\tTITLE\tWORDS\tSTATUS")
	for _, e := range entries {
		status := "published"
		if e.Draft {
			status = "draft"
		}
		date := "-"
		if !e.Date.IsZero() {
			date = e.Date.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", date, e.Slug, e.Title, e.WordCount, status)
	}
	return w.Flush()
}
