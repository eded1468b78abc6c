package util

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyAsError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://api.opensea.io/api/v1/collection/nope", nil)
	res := &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(`{"success": false}`)),
		Request:    req,
	}

	err := BodyAsError(res)

	var httpErr ErrHTTP
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "https://api.opensea.io/api/v1/collection/nope", httpErr.URL)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), `{"success": false}`)
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "abc", TruncateWithEllipsis("abc", 3))
	assert.Equal(t, "ab...", TruncateWithEllipsis("abc", 2))
}

func TestResolveEnvFile(t *testing.T) {
	if InDocker() {
		t.Skip("docker resolves to the docker env file")
	}
	assert.Equal(t, "app-local-seabot.yaml", ResolveEnvFile("seabot", "local"))
	assert.Equal(t, "app-prod-seabot.yaml", ResolveEnvFile("seabot", "prod"))
	assert.Equal(t, "app-local-seabot.yaml", ResolveEnvFile("seabot", "unknown"))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "_local"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_local", "app-local-seabot.yaml"), []byte("SALES_PAGE_LIMIT: 5\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	viper.Set("ENV", "local")
	defer viper.Set("ENV", nil)

	LoadEnvFile("app-local-seabot.yaml")
	assert.Equal(t, 5, viper.GetInt("SALES_PAGE_LIMIT"))

	assert.NotPanics(t, func() { LoadEnvFile("app-local-missing.yaml") })
}
