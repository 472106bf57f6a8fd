package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Discogs.BaseURL != "https://api.discogs.com" {
			t.Errorf("expected base URL https://api.discogs.com, got %s", config.Discogs.BaseURL)
		}
		if config.Discogs.FolderID != 1 {
			t.Errorf("expected folder 1, got %d", config.Discogs.FolderID)
		}
		if config.Discogs.PerPage != 500 {
			t.Errorf("expected per_page 500, got %d", config.Discogs.PerPage)
		}
		if config.Sync.RetryDelay.Duration != time.Minute {
			t.Errorf("expected retry delay 1m, got %s", config.Sync.RetryDelay)
		}
		if config.Sync.MaxAttempts != 11 {
			t.Errorf("expected 11 max attempts, got %d", config.Sync.MaxAttempts)
		}
		if config.Database.Path != "./discogs-uploader.db" {
			t.Errorf("expected database path ./discogs-uploader.db, got %s", config.Database.Path)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Discogs.UserAgent != DefaultConfig().Discogs.UserAgent {
			t.Errorf("created config user agent doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials]
username = "crate-digger"

[discogs]
base_url = "http://localhost:9090"
per_page = 100

[sync]
retry_delay = "5s"
workers = 4

[database]
path = ""
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Discogs.BaseURL != "http://localhost:9090" {
			t.Errorf("expected base URL http://localhost:9090, got %s", config.Discogs.BaseURL)
		}
		if config.Discogs.PerPage != 100 {
			t.Errorf("expected per_page 100, got %d", config.Discogs.PerPage)
		}
		if config.Sync.RetryDelay.Duration != 5*time.Second {
			t.Errorf("expected retry delay 5s, got %s", config.Sync.RetryDelay)
		}
		if config.Sync.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", config.Sync.Workers)
		}
		if config.Sync.MaxAttempts != 11 {
			t.Errorf("unset keys should keep defaults, got max_attempts %d", config.Sync.MaxAttempts)
		}
		if config.Database.Path != "" {
			t.Errorf("expected empty database path, got %s", config.Database.Path)
		}
		if config.Credentials.Username != "crate-digger" {
			t.Errorf("expected username crate-digger, got %s", config.Credentials.Username)
		}
	})

	t.Run("LoadConfig Rejects Invalid Values", func(t *testing.T) {
		tt := []struct {
			name string
			body string
		}{
			{name: "per_page too large", body: "[discogs]\nper_page = 501\n"},
			{name: "zero attempts", body: "[sync]\nmax_attempts = 0\n"},
			{name: "negative workers", body: "[sync]\nworkers = -1\n"},
			{name: "bad duration", body: "[sync]\nretry_delay = \"soon\"\n"},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tc.body), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}
				if _, err := LoadConfig(configPath); err == nil {
					t.Error("expected an error")
				}
			})
		}
	})
}

func TestLoadRunConfig(t *testing.T) {
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}

	t.Run("reads credentials from env", func(t *testing.T) {
		rc, err := LoadRunConfig(DefaultConfig(), env(map[string]string{
			EnvToken:    "abc",
			EnvUsername: "user",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rc.Token != "abc" || rc.Username != "user" {
			t.Errorf("unexpected run config: %+v", rc)
		}
		if rc.DeleteAllFirst {
			t.Error("delete-all should default to off")
		}
	})

	t.Run("env overrides config file", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Token = "from-file"
		config.Credentials.Username = "file-user"

		rc, err := LoadRunConfig(config, env(map[string]string{EnvToken: "from-env"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rc.Token != "from-env" {
			t.Errorf("expected env token, got %s", rc.Token)
		}
		if rc.Username != "file-user" {
			t.Errorf("expected file username, got %s", rc.Username)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := LoadRunConfig(DefaultConfig(), env(map[string]string{EnvUsername: "user"}))
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("missing username", func(t *testing.T) {
		_, err := LoadRunConfig(DefaultConfig(), env(map[string]string{EnvToken: "abc"}))
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestDeleteAllEnabled(t *testing.T) {
	tt := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{" 1 ", true},
		{"", false},
		{"0", false},
		{"true", false},
		{"yes", false},
	}

	for _, tc := range tt {
		if got := DeleteAllEnabled(tc.value); got != tc.want {
			t.Errorf("DeleteAllEnabled(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestDeleteAllIgnored(t *testing.T) {
	for v, want := range map[string]bool{
		"":     false,
		"  ":   false,
		"0":    false,
		"1":    false,
		" 1 ":  false,
		"yes":  true,
		"true": true,
		"2":    true,
	} {
		if got := DeleteAllIgnored(v); got != want {
			t.Errorf("DeleteAllIgnored(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("loads variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("DISCOGS_UPLOADER_TEST_VAR=loaded\n"), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("DISCOGS_UPLOADER_TEST_VAR") })

		if err := LoadEnvFile(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv("DISCOGS_UPLOADER_TEST_VAR"); got != "loaded" {
			t.Errorf("expected loaded, got %q", got)
		}
	})
}
