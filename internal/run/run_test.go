package run

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modsieve/internal/check"
)

func TestLoadFile(t *testing.T) {
	write := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "suite.json")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	t.Run("loads a valid suite", func(t *testing.T) {
		path := write(t, `{"runs":[{"name":"main","checks":[{"name":"spam"}]}]}`)

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, cfg.Runs, 1)
		assert.Equal(t, "main", cfg.Runs[0].Name)
		require.Len(t, cfg.Runs[0].Checks, 1)
		assert.Equal(t, "spam", cfg.Runs[0].Checks[0].Name)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		path := write(t, `{"runs":[{"name":"main","cheks":[]}]}`)

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse suite config")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read suite config")
	})
}

func TestConfigValidation(t *testing.T) {
	deps := testDeps(t)

	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "at least one run required",
			cfg:     Config{},
			wantErr: "at least one run is required",
		},
		{
			name:    "run name required",
			cfg:     Config{Runs: []RunConfig{{Checks: []check.Config{{Name: "a"}}}}},
			wantErr: "run 0: name is required",
		},
		{
			name: "duplicate run name",
			cfg: Config{Runs: []RunConfig{
				{Name: "main"},
				{Name: "main"},
			}},
			wantErr: `duplicate run name "main"`,
		},
		{
			name: "duplicate check name within a run",
			cfg: Config{Runs: []RunConfig{
				{Name: "main", Checks: []check.Config{{Name: "a"}, {Name: "a"}}},
			}},
			wantErr: `duplicate check name "a"`,
		},
		{
			name: "check build errors carry the run name",
			cfg: Config{Runs: []RunConfig{
				{Name: "main", Checks: []check.Config{{Name: "a", Condition: "XOR"}}},
			}},
			wantErr: `run "main"`,
		},
		{
			name: "goto target must exist",
			cfg: Config{Runs: []RunConfig{
				{Name: "main", Checks: []check.Config{{Name: "a", PostTrigger: "goto:cleanup"}}},
			}},
			wantErr: `goto target "cleanup" does not exist`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg, deps)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
