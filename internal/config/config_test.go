package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stardiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, int64(8<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, 100000, cfg.HTTP.MaxEpochs)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, runtime.NumCPU(), cfg.Prop.Workers)
	assert.Equal(t, "/tmp/stardiff/tle", cfg.TLE.CacheDir)
	assert.Equal(t, 5, cfg.TLE.MaxFiles)
	assert.Equal(t, 30*time.Second, cfg.TLE.FetchTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, "basic", cfg.Compare.Mode)
	assert.Equal(t, time.Minute, cfg.Compare.Step)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9090"
  maxEpochs: 500
prop:
  workers: 2
log:
  format: text
  file: /var/log/stardiff.log
compare:
  mode: stats
  step: 30s
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 500, cfg.HTTP.MaxEpochs)
	assert.Equal(t, 2, cfg.Prop.Workers)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "/var/log/stardiff.log", cfg.Log.File)
	assert.Equal(t, "stats", cfg.Compare.Mode)
	assert.Equal(t, 30*time.Second, cfg.Compare.Step)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.ErrorIs(t, err, ErrReadingConfigFile)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "http:\n  addr: \":9090\"\n")
	t.Setenv("STARDIFF_HTTP_ADDR", ":7000")
	t.Setenv("STARDIFF_PROP_WORKERS", "3")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 3, cfg.Prop.Workers)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STARDIFF_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "info", "")
	fs.String("mode", "basic", "")
	fs.Int("count", 10, "")
	require.NoError(t, fs.Parse([]string{"--log-level=debug", "--mode=dumpvf"}))

	cfg, err := Load("", Bindings{
		"log.level":     fs.Lookup("log-level"),
		"compare.mode":  fs.Lookup("mode"),
		"compare.count": fs.Lookup("count"),
		"compare.a":     fs.Lookup("not-defined"),
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "dumpvf", cfg.Compare.Mode)
	// An unset flag does not override the built-in default.
	assert.Equal(t, defaultCompareCount, cfg.Compare.Count)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"bad log format", map[string]string{"STARDIFF_LOG_FORMAT": "xml"}, ErrInvalidLogFormat},
		{"zero workers", map[string]string{"STARDIFF_PROP_WORKERS": "0"}, ErrInvalidWorkers},
		{"zero epochs", map[string]string{"STARDIFF_HTTP_MAXEPOCHS": "0"}, ErrInvalidLimit},
		{"auth without token", map[string]string{"STARDIFF_AUTH_ENABLED": "true"}, ErrMissingToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthWithToken(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STARDIFF_AUTH_ENABLED", "true")
	t.Setenv("STARDIFF_AUTH_TOKEN", "s3cret")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.Token)
}

func TestCompareValidate(t *testing.T) {
	valid := CompareConfig{
		A: "a.tle", B: "b.tle",
		Frame: "teme", Start: "2024-03-01T00:00:00Z",
		Step: time.Minute, Count: 10, Mode: "stats",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*CompareConfig)
		want   error
	}{
		{"missing b", func(c *CompareConfig) { c.B = "" }, ErrMissingSource},
		{"bad mode", func(c *CompareConfig) { c.Mode = "full" }, ErrInvalidMode},
		{"bad frame", func(c *CompareConfig) { c.Frame = "j2000" }, ErrInvalidFrame},
		{"bad start", func(c *CompareConfig) { c.Start = "yesterday" }, ErrInvalidStart},
		{"zero step", func(c *CompareConfig) { c.Step = 0 }, ErrInvalidStep},
		{"negative count", func(c *CompareConfig) { c.Count = -1 }, ErrInvalidCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}

	empty := valid
	empty.Start = ""
	assert.NoError(t, empty.Validate(), "empty start means now")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
