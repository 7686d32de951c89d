package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolateConfig(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{envAPIBase, envTimeout, envHistoryDB, envNotify} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func TestLoadSettingsDefaults(t *testing.T) {
	home := isolateConfig(t)

	settings, err := LoadSettings("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.APIBase != DefaultAPIBase {
		t.Fatalf("api base: got %q", settings.APIBase)
	}
	if settings.Timeout != DefaultTimeout {
		t.Fatalf("timeout: got %v", settings.Timeout)
	}
	if want := filepath.Join(home, ".config", "amelie", "history.db"); settings.HistoryPath != want {
		t.Fatalf("history path: got %q want %q", settings.HistoryPath, want)
	}
	if !settings.Notify {
		t.Fatal("notify should default to true")
	}
}

func TestLoadSettingsLayering(t *testing.T) {
	isolateConfig(t)

	notify := false
	if err := WriteGlobalConfig(GlobalConfig{
		APIBase:        "https://file.example.com",
		TimeoutSeconds: 10,
		HistoryPath:    "~/guides.db",
		Notify:         &notify,
	}); err != nil {
		t.Fatalf("write config: %v", err)
	}

	dotenv := filepath.Join(t.TempDir(), ".env")
	content := "AMELIE_API_BASE=https://dotenv.example.com\nAMELIE_TIMEOUT=45s\n"
	if err := os.WriteFile(dotenv, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envTimeout, "5")

	settings, err := LoadSettings(dotenv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.APIBase != "https://dotenv.example.com" {
		t.Fatalf(".env should override the file: got %q", settings.APIBase)
	}
	if settings.Timeout != 5*time.Second {
		t.Fatalf("environment should override .env: got %v", settings.Timeout)
	}
	home, _ := os.UserHomeDir()
	if settings.HistoryPath != filepath.Join(home, "guides.db") {
		t.Fatalf("history path: got %q", settings.HistoryPath)
	}
	if settings.Notify {
		t.Fatal("notify from file should be false")
	}
}

func TestLoadSettingsMissingDotenv(t *testing.T) {
	isolateConfig(t)
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}

func TestLoadSettingsRejectsBadEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv(envNotify, "sometimes")
	if _, err := LoadSettings(""); err == nil {
		t.Fatal("expected error for invalid AMELIE_NOTIFY")
	}
}

func TestGlobalConfigSetGet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{key: KeyAPIBase, value: "http://localhost:8080", want: "http://localhost:8080"},
		{key: KeyAPIBase, value: "localhost", wantErr: true},
		{key: KeyTimeoutSeconds, value: "60", want: "60"},
		{key: KeyTimeoutSeconds, value: "-1", wantErr: true},
		{key: KeyTimeoutSeconds, value: "", want: ""},
		{key: KeyNotify, value: "false", want: "false"},
		{key: KeyNotify, value: "maybe", wantErr: true},
		{key: KeyHistoryPath, value: "/tmp/h.db", want: "/tmp/h.db"},
		{key: "colour", value: "blue", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			var config GlobalConfig
			err := config.Set(tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := config.Get(tt.key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestReadWriteGlobalConfig(t *testing.T) {
	isolateConfig(t)

	config, err := ReadGlobalConfig()
	if err != nil {
		t.Fatalf("read missing: %v", err)
	}
	if config.APIBase != "" {
		t.Fatalf("expected empty config, got %+v", config)
	}

	if err := config.Set(KeyAPIBase, "https://guide.example.com"); err != nil {
		t.Fatal(err)
	}
	if err := WriteGlobalConfig(config); err != nil {
		t.Fatalf("write: %v", err)
	}
	reloaded, err := ReadGlobalConfig()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if reloaded.APIBase != "https://guide.example.com" {
		t.Fatalf("got %+v", reloaded)
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30", want: 30 * time.Second},
		{in: "1m30s", want: 90 * time.Second},
		{in: "0", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTimeout(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("%q: got %v, %v want %v", tt.in, got, err, tt.want)
		}
	}
}
