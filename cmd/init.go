package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillmark/quill/internal/frontmatter"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new site",
	Long: `Init scaffolds a site in the given directory (default "."): a
.quill.yml configuration file, a content directory, and a sample post.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

const defaultConfigFile = `site:
  title: My Blog
  base_url: http://localhost:8080

content:
  dirs:
    - content

build:
  output_dir: public

development:
  live_reload: true
  show_drafts: true
`

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	contentDir := filepath.Join(root, "content")
	if err := os.MkdirAll(contentDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", contentDir, err)
	}

	configPath := filepath.Join(root, ".quill.yml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfigFile), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	sample, err := frontmatter.Encode(&frontmatter.Parsed{
		Title: "Hello, World",
		Date:  time.Now().Truncate(time.Second),
		Draft: true,
		Body: `Welcome to your new site. This post is a draft: it shows on the
development server but stays out of builds until you remove the draft flag.

` + "```go\nfmt.Println(\"hello\")\n```\n",
	})
	if err != nil {
		return err
	}

	samplePath := filepath.Join(contentDir, "hello-world.md")
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		if err := os.WriteFile(samplePath, []byte(sample), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", samplePath, err)
		}
	}

	fmt.Printf("✓ initialized site in %s\n", root)
	fmt.Println("  next: quill serve")
	return nil
}
