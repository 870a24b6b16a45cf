package config

import (
	"runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Quill Site", cfg.Site.Title)
	assert.Equal(t, "http://localhost:8080", cfg.Site.BaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, []string{"./content"}, cfg.Content.Dirs)
	assert.Equal(t, []string{"*.bak", "_*"}, cfg.Content.ExcludePatterns)
	assert.Equal(t, "public", cfg.Build.OutputDir)
	assert.Equal(t, runtime.NumCPU(), cfg.Build.Workers)
	assert.True(t, cfg.Development.LiveReload)
	assert.True(t, cfg.Development.ShowDrafts)
	assert.True(t, cfg.Development.LintOnReload)
	assert.Equal(t, 300, cfg.Development.DebounceMs)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("site.title", "My Blog")
	viper.Set("server.port", 3000)
	viper.Set("content.dirs", []string{"posts", "notes"})
	viper.Set("development.live_reload", false)
	viper.Set("build.workers", 4)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "My Blog", cfg.Site.Title)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"posts", "notes"}, cfg.Content.Dirs)
	assert.False(t, cfg.Development.LiveReload)
	assert.Equal(t, 4, cfg.Build.Workers)
}

func TestLoadRejectsBadPort(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("server.port", 70000)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestLoadRejectsUnknownEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("server.environment", "prod")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment")
}

func TestLoadRejectsAbsoluteContentDir(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("content.dirs", []string{"/etc/content"})
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute")
}

func TestLoadRejectsTraversalOutputDir(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("build.output_dir", "../outside")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("site.base_url", "ftp://example.com")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestLoadRejectsTooManyWorkers(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("build.workers", 500)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestValidateLocalPath(t *testing.T) {
	assert.NoError(t, validateLocalPath("content"))
	assert.NoError(t, validateLocalPath("./content/posts"))
	assert.Error(t, validateLocalPath(""))
	assert.Error(t, validateLocalPath("/abs"))
	assert.Error(t, validateLocalPath(".."))
	assert.Error(t, validateLocalPath("../sibling"))
	assert.Error(t, validateLocalPath("a/../../b"))
}

func TestAllowedOriginsValidation(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("server.allowed_origins", []string{"*"})
	_, err := Load()
	assert.NoError(t, err)
}
