package cmd

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

var doctorFormat string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose site configuration and environment",
	Long: `Doctor checks the site setup and reports problems:

- Configuration file presence and raw YAML validity
- Content directories existing and readable
- Output directory writability
- Server port availability

Examples:
  quill doctor                 # Full diagnosis
  quill doctor --format json   # Output as JSON for tooling`,
	RunE: runDoctor,
}

// DiagnosticResult represents the result of one diagnostic check
type DiagnosticResult struct {
	Name       string `json:"name" yaml:"name"`
	Status     string `json:"status" yaml:"status"` // "ok", "warning", "error"
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
}

func init() {
	doctorCmd.Flags().StringVarP(&doctorFormat, "format", "f", "table", "Output format (table|json|yaml)")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	report := &DoctorReport{
		Timestamp: time.Now(),
		Environment: map[string]string{
			"go":       runtime.Version(),
			"platform": fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		},
	}

	report.Results = append(report.Results, checkConfigFile())
	report.Results = append(report.Results, checkContentDirs()...)
	report.Results = append(report.Results, checkOutputDir())
	report.Results = append(report.Results, checkPortAvailability())

	switch doctorFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoded, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(encoded)
		return err
	default:
		return printDoctorTable(report)
	}
}

// checkConfigFile validates that the raw config file is well-formed YAML,
// independently of viper's lenient loading.
func checkConfigFile() DiagnosticResult {
	path := viper.ConfigFileUsed()
	if path == "" {
		path = ".quill.yml"
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return DiagnosticResult{
			Name:       "config-file",
			Status:     "warning",
			Message:    fmt.Sprintf("no config file at %s, using defaults", path),
			Suggestion: "run `quill init` to create one",
		}
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return DiagnosticResult{
			Name:       "config-file",
			Status:     "error",
			Message:    fmt.Sprintf("%s is not valid YAML: %v", path, err),
			Suggestion: "fix the syntax error; quill falls back to defaults otherwise",
		}
	}

	return DiagnosticResult{
		Name:    "config-file",
		Status:  "ok",
		Message: fmt.Sprintf("%s parses (%d top-level key(s))", path, len(raw)),
	}
}

func checkContentDirs() []DiagnosticResult {
	dirs := viper.GetStringSlice("content.dirs")
	if len(dirs) == 0 {
		dirs = []string{"content"}
	}

	var results []DiagnosticResult
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			results = append(results, DiagnosticResult{
				Name:       "content-dir",
				Status:     "error",
				Message:    fmt.Sprintf("content dir %s does not exist", dir),
				Suggestion: fmt.Sprintf("mkdir -p %s or adjust content.dirs", dir),
			})
		case !info.IsDir():
			results = append(results, DiagnosticResult{
				Name:    "content-dir",
				Status:  "error",
				Message: fmt.Sprintf("%s is not a directory", dir),
			})
		default:
			results = append(results, DiagnosticResult{
				Name:    "content-dir",
				Status:  "ok",
				Message: fmt.Sprintf("content dir %s exists", dir),
			})
		}
	}
	return results
}

func checkOutputDir() DiagnosticResult {
	dir := viper.GetString("build.output_dir")
	if dir == "" {
		dir = "public"
	}

	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return DiagnosticResult{
			Name:    "output-dir",
			Status:  "error",
			Message: fmt.Sprintf("%s exists and is not a directory", dir),
		}
	}
	return DiagnosticResult{
		Name:    "output-dir",
		Status:  "ok",
		Message: fmt.Sprintf("output dir %s usable", dir),
	}
}

func checkPortAvailability() DiagnosticResult {
	port := viper.GetInt("server.port")
	if port == 0 {
		port = 8080
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return DiagnosticResult{
			Name:       "server-port",
			Status:     "warning",
			Message:    fmt.Sprintf("port %d is in use", port),
			Suggestion: "stop the other process or set server.port",
		}
	}
	_ = listener.Close()
	return DiagnosticResult{
		Name:    "server-port",
		Status:  "ok",
		Message: fmt.Sprintf("port %d is free", port),
	}
}

func printDoctorTable(report *DoctorReport) error {
	var errorCount, warningCount int
	for _, result := range report.Results {
		symbol := "✓"
		switch result.Status {
		case "warning":
			symbol = "!"
			warningCount++
		case "error":
			symbol = "✗"
			errorCount++
		}
		fmt.Printf("%s %-12s %s\n", symbol, result.Name, result.Message)
		if result.Suggestion != "" {
			fmt.Printf("  → %s\n", result.Suggestion)
		}
	}

	fmt.Printf("\n%d check(s), %d warning(s), %d error(s)\n",
		len(report.Results), warningCount, errorCount)
	if errorCount > 0 {
		return fmt.Errorf("doctor found %d problem(s)", errorCount)
	}
	return nil
}
