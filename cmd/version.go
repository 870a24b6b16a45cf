package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillmark/quill/internal/version"
)

var versionDetailed bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if versionDetailed {
			fmt.Println(version.GetDetailedVersion())
			return
		}
		fmt.Printf("quill %s\n", version.GetShortVersion())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "show detailed build information")
	rootCmd.AddCommand(versionCmd)
}
