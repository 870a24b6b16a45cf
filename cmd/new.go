package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/quillmark/quill/internal/frontmatter"
	"github.com/quillmark/quill/internal/scanner"
)

var (
	newDraft bool
	newTags  []string
)

var newCmd = &cobra.Command{
	Use:     "new [title]",
	Aliases: []string{"n"},
	Short:   "Scaffold a new post",
	Long: `New creates a Markdown file in the first configured content
directory with front matter filled in. The slug is derived from the title;
the post starts as a draft unless --draft=false.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().BoolVar(&newDraft, "draft", true, "create the post as a draft")
	newCmd.Flags().StringSliceVar(&newTags, "tags", nil, "tags for the post")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.Close()

	rawTitle := strings.Join(args, " ")
	title := cases.Title(language.English).String(rawTitle)
	slug := scanner.Slugify(rawTitle)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", rawTitle)
	}

	content, err := frontmatter.Encode(&frontmatter.Parsed{
		Title: title,
		Date:  time.Now().Truncate(time.Second),
		Draft: newDraft,
		Tags:  newTags,
		Body:  "Write your post here.\n",
	})
	if err != nil {
		return err
	}

	contentDir := env.config.Content.Dirs[0]
	if err := os.MkdirAll(contentDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", contentDir, err)
	}

	path := filepath.Join(contentDir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("✓ created %s\n", path)
	return nil
}
