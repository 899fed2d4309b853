package config

import "testing"

func TestGetEnvAsWorkerHint(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  int
	}{
		{name: "absent falls back to default", value: "", want: 8},
		{name: "valid value", value: "12", want: 12},
		{name: "unparsable falls back to 1", value: "abc", want: 1},
		{name: "zero falls back to 1", value: "0", want: 1},
		{name: "negative falls back to 1", value: "-3", want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("PNG_COMPRESS_THREADS", tc.value)
			if got := getEnvAsWorkerHint("PNG_COMPRESS_THREADS", 8); got != tc.want {
				t.Fatalf("getEnvAsWorkerHint = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PNG_COMPRESS_THREADS", "")
	t.Setenv("GIN_MODE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CompressThreads != 8 {
		t.Fatalf("CompressThreads = %d, want 8", cfg.CompressThreads)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.OxipngPath != "oxipng" {
		t.Fatalf("OxipngPath = %s, want oxipng", cfg.OxipngPath)
	}
	if cfg.SpoolDir == "" {
		t.Fatal("expected SpoolDir to have a default")
	}
}

func TestValidateReleaseMode(t *testing.T) {
	cfg := &Config{GinMode: "release"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing auth settings in release mode")
	}

	cfg = &Config{
		GinMode:         "release",
		AppUsername:     "admin",
		AppPasswordHash: "$2a$10$hash",
		SessionSecret:   "secret",
		QueueRedisURL:   "redis://127.0.0.1:6379/0",
		OxipngPath:      "oxipng",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}
