package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quillmark/quill/internal/build"
)

var (
	buildDrafts bool
	buildForce  bool
	buildOutput string
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Build the static site",
	Long: `Build renders every published post to HTML and writes the site tree:

  public/index.html          post listing, newest first
  public/posts/<slug>/       one page per post
  public/feed.xml            RSS 2.0 feed
  public/sitemap.xml         sitemap
  public/assets/style.css    default stylesheet

Lint runs first; the build aborts on lint errors unless --force is given.
Drafts are excluded unless --drafts is set.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildDrafts, "drafts", false, "include draft posts in the output")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "build even when lint reports errors")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output directory (overrides config)")
	_ = viper.BindPFlag("build.drafts", buildCmd.Flags().Lookup("drafts"))
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.scanContent(); err != nil {
		return fmt.Errorf("scanning content: %w", err)
	}

	collector := env.lintRunner().Run(cmd.Context())
	if collector.HasErrors() {
		for _, d := range collector.Diagnostics() {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		if !buildForce {
			return fmt.Errorf("lint reported errors; fix them or rerun with --force")
		}
		fmt.Fprintln(os.Stderr, "continuing despite lint errors (--force)")
	}

	outputDir := env.config.Build.OutputDir
	if buildOutput != "" {
		outputDir = buildOutput
	}

	pipeline := build.NewPipeline(
		env.config.Build.Workers,
		env.registry,
		env.renderer,
		env.logger.WithComponent("build"),
	)

	perf := env.logger.StartOperation("site-build")
	results, err := pipeline.Build(cmd.Context(), build.Options{
		IncludeDrafts: buildDrafts || env.config.Build.Drafts,
		OutputDir:     outputDir,
		BaseURL:       env.config.Site.BaseURL,
		SiteTitle:     env.config.Site.Title,
	})
	if err != nil {
		perf.EndWithError(cmd.Context(), err)
		return err
	}
	perf.End(cmd.Context())

	snapshot := pipeline.Metrics().Snapshot()
	fmt.Printf("✓ built %d page(s) to %s (%d from cache)\n",
		len(results), outputDir, snapshot.CacheHits)
	return nil
}
