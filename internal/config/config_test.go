package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectEtc(t *testing.T) string {
	t.Helper()

	root, err := filepath.Abs("../../")
	require.NoError(t, err, "failed to get project root")

	return filepath.Join(root, "etc") + string(filepath.Separator)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))

	return dir
}

const minimal = `
Title = "test"

[DB]
Driver = "sqlite"
Path = "test.db"

[Webserver]
Port = 9090
URL = "http://localhost:9090"
`

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(projectEtc(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "info", cfg.Log.LogLevel)
	assert.True(t, cfg.Log.Console.Enabled)
	assert.Equal(t, "access.log", cfg.Log.File.Access.Name)

	require.Len(t, cfg.Seed, 2)
	assert.Equal(t, "site_name", cfg.Seed[0].Key)
	assert.Equal(t, "json", cfg.Seed[1].Type)
	assert.True(t, cfg.Seed[1].System)
}

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := ReadConfig(writeConfig(t, minimal+`
[[Seed]]
Key = "greeting"
Value = "hello"
`))
	require.NoError(t, err)

	assert.Equal(t, defaultShutDownTime, cfg.Webserver.ShutDownTime)
	assert.Equal(t, defaultBodyLimit, cfg.Webserver.BodyLimit)
	assert.Equal(t, "string", cfg.Seed[0].Type)
}

func TestReadConfigEnv(t *testing.T) {
	dir := writeConfig(t, minimal)

	t.Setenv("PAGODA_WEBSERVER_PORT", "7070")
	t.Setenv(EnvJSON, `{"Title": "from json", "Admin": {"Username": "root"}}`)

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Webserver.Port)
	assert.Equal(t, "from json", cfg.Title)
	assert.Equal(t, "root", cfg.Admin.Username)
	assert.Equal(t, "test.db", cfg.DB.Path, "fields missing from the JSON are kept")
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "port zero",
			content: strings.Replace(minimal, "Port = 9090", "Port = 0", 1),
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name:    "url empty",
			content: strings.Replace(minimal, `URL = "http://localhost:9090"`, `URL = ""`, 1),
			wantErr: ErrEmptyURL,
		},
		{
			name:    "unknown driver",
			content: strings.Replace(minimal, `Driver = "sqlite"`, `Driver = "oracle"`, 1),
			wantErr: ErrUnknownDBDriver,
		},
		{
			name:    "sqlite without path",
			content: strings.Replace(minimal, `Path = "test.db"`, "", 1),
			wantErr: ErrEmptyDBPath,
		},
		{
			name:    "mysql without host",
			content: strings.Replace(minimal, `Driver = "sqlite"`, `Driver = "mysql"`, 1),
			wantErr: ErrEmptyDBHost,
		},
		{
			name:    "seed without key",
			content: minimal + "\n[[Seed]]\nValue = \"x\"\n",
			wantErr: ErrSeedKeyEmpty,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadConfig(writeConfig(t, tc.content))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)
}

func TestReadConfigBadJSONEnv(t *testing.T) {
	t.Setenv(EnvJSON, `{not json`)

	_, err := ReadConfig(writeConfig(t, minimal))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvJSON)
}

func TestDumpConfig(t *testing.T) {
	cfg, err := ReadConfig(projectEtc(t))
	require.NoError(t, err)

	out, err := DumpConfig(&cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `Title = "PagodaAdmin"`)
	assert.Contains(t, out, "[[Seed]]")

	out, err = DumpConfigJSON(&cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"Title": "PagodaAdmin"`)
}
