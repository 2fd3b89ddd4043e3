package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvService_OverlaysEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("IDEATION_TEST_A=base\nIDEATION_TEST_B=base\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("IDEATION_TEST_B=override\n"), 0o644))

	t.Chdir(dir)
	t.Setenv("APP_ENV", "test")
	t.Setenv("IDEATION_TEST_A", "")
	t.Setenv("IDEATION_TEST_B", "")
	os.Unsetenv("IDEATION_TEST_A")
	os.Unsetenv("IDEATION_TEST_B")

	e := NewEnvService()
	assert.Equal(t, "test", e.AppEnv())
	assert.Equal(t, "base", e.Get("IDEATION_TEST_A"))
	assert.Equal(t, "override", e.Get("IDEATION_TEST_B"))
}

func TestEnvService_TypedGetters(t *testing.T) {
	t.Setenv("IDEATION_BOOL", "true")
	t.Setenv("IDEATION_INT", "42")
	t.Setenv("IDEATION_BAD_INT", "x")
	t.Setenv("IDEATION_DUR", "90s")

	e := &EnvService{}
	assert.True(t, e.GetBool("IDEATION_BOOL", false))
	assert.True(t, e.GetBool("IDEATION_UNSET_BOOL", true))
	assert.Equal(t, 42, e.GetInt("IDEATION_INT", 1))
	assert.Equal(t, 1, e.GetInt("IDEATION_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, e.GetDuration("IDEATION_DUR", time.Second))
	assert.Equal(t, "def", e.GetOr("IDEATION_UNSET", "def"))

	_, err := e.MustGet("IDEATION_UNSET")
	assert.Error(t, err)
}
