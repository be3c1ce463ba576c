package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile - утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// chdir - смена текущего рабочего каталога с авто-возвратом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
env: "prod"
debug: true
http:
  host: "127.0.0.1"
  port: "9000"
db:
  url: "mongodb://localhost:27017/myLibraryDB"
auth:
  jwt_secret: "yaml-secret"
  access_token_ttl: "30m"
  issuer: "lib"
  audience: ["dash"]
redis:
  url: "redis://localhost:6379/0"
blocklist:
  purge_interval: "1m"
limits:
  default_per_page: 5
  max_per_page: 20
cors:
  allowed_origins: ["http://localhost:8501"]
timeouts:
  service: "3s"
`

const minimalYAML = `
env: "stage"
db:
  url: "memory://"
auth:
  jwt_secret: "s"
`

const brokenYAML = `
env: [unclosed
`

func TestHTTPConfig_Addr(t *testing.T) {
	t.Parallel()
	cfg := HTTPConfig{Host: "0.0.0.0", Port: "8080"}
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestDBConfig_Backend(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		url  string
		want string
	}{
		{"mongodb://localhost:27017/db", BackendMongo},
		{"mongodb+srv://u:p@cluster.example.net/db", BackendMongo},
		{"postgres://u:p@localhost:5432/db?sslmode=disable", BackendPostgres},
		{"postgresql://localhost/db", BackendPostgres},
		{"memory://", BackendMemory},
		{"mysql://localhost/db", ""},
		{"", ""},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.want, DBConfig{URL: tc.url}.Backend(), tc.url)
	}
}

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.True(t, cfg.Debug)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr())
	require.Equal(t, BackendMongo, cfg.DB.Backend())
	require.Equal(t, "yaml-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Equal(t, "lib", cfg.Auth.Issuer)
	require.Equal(t, []string{"dash"}, cfg.Auth.Audience)
	require.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	require.Equal(t, time.Minute, cfg.Blocklist.PurgeInterval)
	require.Equal(t, 5, cfg.Limits.DefaultPerPage)
	require.Equal(t, 20, cfg.Limits.MaxPerPage)
	require.Equal(t, []string{"http://localhost:8501"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, 3*time.Second, cfg.Timeouts.Service)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "config.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.HTTP.Port)
	require.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 10, cfg.Limits.DefaultPerPage)
	require.Equal(t, 50, cfg.Limits.MaxPerPage)
	require.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	require.Empty(t, cfg.Redis.URL)
	require.False(t, cfg.Debug)
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "from_env_path.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "stage", cfg.Env)
}

func TestLoad_WithLocalYAML_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

// Явный путь важнее CONFIG_PATH и local.yaml.
func TestLoad_Priority_ExplicitWinsOverEnvAndLocal(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	explicit := writeFile(t, dir, "explicit.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", writeFile(t, dir, "bad.yaml", brokenYAML))
	writeFile(t, ".", "local.yaml", sampleYAML)

	cfg, err := Load(explicit)
	require.NoError(t, err)
	require.Equal(t, "stage", cfg.Env)
}

func TestLoad_EnvOverlay_OverridesValuesFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	t.Setenv("PORT", "18080")
	t.Setenv("JWT_SECRET_KEY", "env-secret")
	t.Setenv("DEBUG", "false")
	t.Setenv("LIMITS_MAX_PER_PAGE", "40")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "18080", cfg.HTTP.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	require.False(t, cfg.Debug)
	require.Equal(t, 40, cfg.Limits.MaxPerPage)
}

// «Только ENV» без файлов.
func TestLoad_EnvOnly_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")

	t.Setenv("ENV", "dev")
	t.Setenv("PORT", "5000")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/library?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "env-only")
	t.Setenv("DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "5000", cfg.HTTP.Port)
	require.Equal(t, BackendPostgres, cfg.DB.Backend())
	require.Equal(t, "env-only", cfg.Auth.JWTSecret)
	require.True(t, cfg.Debug)
}

// .env из рабочего каталога подхватывается, но не перекрывает ENV процесса.
func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "7070")

	writeFile(t, ".", ".env", "DATABASE_URL=memory://\nJWT_SECRET_KEY=from-dotenv\nPORT=6060\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("DATABASE_URL")
		_ = os.Unsetenv("JWT_SECRET_KEY")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
	require.Equal(t, BackendMemory, cfg.DB.Backend())
	require.Equal(t, "7070", cfg.HTTP.Port)
}

func TestLoad_Validate(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	tcs := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown_db_scheme",
			yaml: "db: {url: \"mysql://u:secret@h/db\"}\nauth: {jwt_secret: \"s\"}\n",
			want: "unsupported scheme",
		},
		{
			name: "default_over_max",
			yaml: "db: {url: \"memory://\"}\nauth: {jwt_secret: \"s\"}\nlimits: {default_per_page: 60, max_per_page: 50}\n",
			want: "exceeds",
		},
		{
			name: "non_positive_limits",
			yaml: "db: {url: \"memory://\"}\nauth: {jwt_secret: \"s\"}\nlimits: {default_per_page: -1}\n",
			want: "limits must be positive",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			p := writeFile(t, dir, tc.name+".yaml", tc.yaml)
			_, err := Load(p)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
			require.NotContains(t, err.Error(), "secret@")
		})
	}
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
