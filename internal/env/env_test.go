package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	in := `
# comment
CAFE_PORT=6000
export CAFE_STORE=sqlite
CAFE_NOTES="a # not comment"
CAFE_SECRET='x y' # trailing
CAFE_DSN=postgres://u@h/db # trailing
=nokey
garbage
`
	got, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"CAFE_PORT":   "6000",
		"CAFE_STORE":  "sqlite",
		"CAFE_NOTES":  "a # not comment",
		"CAFE_SECRET": "x y",
		"CAFE_DSN":    "postgres://u@h/db",
	}, got)
}

func TestLoadKeepsExistingEnv(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, ".env")
	b := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(a, []byte("CAFE_T_A=from-a\nCAFE_T_B=from-a\nCAFE_T_PRE=file\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("CAFE_T_B=from-b\n"), 0o644))
	t.Setenv("CAFE_T_PRE", "process")
	t.Cleanup(func() {
		os.Unsetenv("CAFE_T_A")
		os.Unsetenv("CAFE_T_B")
	})

	loaded := Load(a, filepath.Join(dir, "missing"), b)
	assert.Equal(t, []string{a, b}, loaded)
	assert.Equal(t, "from-a", os.Getenv("CAFE_T_A"))
	assert.Equal(t, "from-b", os.Getenv("CAFE_T_B"))
	assert.Equal(t, "process", os.Getenv("CAFE_T_PRE"))
}
