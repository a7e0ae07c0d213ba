package main

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/luxdoc/doc2quiz/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Parsing DOC2QUIZ_* variables
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"DOC2QUIZ_FORMAT":        "hemis",
		"DOC2QUIZ_TIMEOUT":       "45s",
		"DOC2QUIZ_WORKERS":       "3",
		"DOC2QUIZ_MAX_UPLOAD_MB": "50",
		"DOC2QUIZ_CORS_ORIGINS":  " https://a.uz, ,https://b.uz ",
		"DOC2QUIZ_DATABASE_URL":  "postgres://localhost/quiz",
	}
	ec := loadEnvConfig(func(k string) string { return vars[k] })

	if ec.Format != "hemis" || ec.Timeout != 45*time.Second || ec.Workers != 3 || ec.MaxUploadMB != 50 {
		t.Errorf("parsed = %+v", ec)
	}
	if !slices.Equal(ec.CORSOrigins, []string{"https://a.uz", "https://b.uz"}) {
		t.Errorf("CORSOrigins = %v", ec.CORSOrigins)
	}
	if ec.DatabaseURL != "postgres://localhost/quiz" {
		t.Errorf("DatabaseURL = %q", ec.DatabaseURL)
	}
}

func TestLoadEnvConfig_InvalidNumbersIgnored(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"DOC2QUIZ_TIMEOUT":       "forever",
		"DOC2QUIZ_WORKERS":       "-2",
		"DOC2QUIZ_MAX_UPLOAD_MB": "lots",
	}
	ec := loadEnvConfig(func(k string) string { return vars[k] })

	if ec.Timeout != 0 || ec.Workers != 0 || ec.MaxUploadMB != 0 {
		t.Errorf("invalid values should be ignored: %+v", ec)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env overrides file values
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Output.Format = "gift"
	cfg.Server.Addr = ":9000"

	applyEnvConfig(&envConfig{
		Format:      "hemis",
		Soffice:     "/opt/lo/soffice",
		Timeout:     time.Minute,
		CORSOrigins: []string{"https://a.uz"},
		ResultDir:   "/srv/results",
	}, cfg)

	if cfg.Output.Format != "hemis" {
		t.Errorf("Output.Format = %q, env should win over file", cfg.Output.Format)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, unset env must not override", cfg.Server.Addr)
	}
	if cfg.Renderer.SofficePath != "/opt/lo/soffice" || cfg.Renderer.Timeout != time.Minute {
		t.Errorf("Renderer = %+v", cfg.Renderer)
	}
	if cfg.Server.OutputDir != "/srv/results" || !slices.Equal(cfg.Server.CORSOrigins, []string{"https://a.uz"}) {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Parallel()

	env, _, _, _ := testEnvironment(map[string]string{"DOC2QUIZ_FORMAT": "hemis", "DOC2QUIZ_RENDERER": "word"})
	cfg, err := resolveConfig("", env)
	if err != nil {
		t.Fatal(err)
	}

	flags, _, err := parseConvertFlags([]string{"-f", "gift", "--renderer", "libreoffice", "-t", "90s"})
	if err != nil {
		t.Fatal(err)
	}
	if err := mergeConvertFlags(flags, cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Output.Format != "gift" || cfg.Renderer.Backend != "libreoffice" || cfg.Renderer.Timeout != 90*time.Second {
		t.Errorf("flags should win: format=%q backend=%q timeout=%s", cfg.Output.Format, cfg.Renderer.Backend, cfg.Renderer.Timeout)
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"DOC2QUIZ_FORMAT=gift",
		"DOC2QUIZ_FORMATT=gift",
		"HOME=/root",
		"DOC2QUIZ_WORKER=2",
	})

	out := buf.String()
	for _, want := range []string{"DOC2QUIZ_FORMATT", "DOC2QUIZ_WORKER "} {
		if !strings.Contains(out, want) {
			t.Errorf("missing warning for %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "DOC2QUIZ_FORMAT ") || strings.Contains(out, "HOME") {
		t.Errorf("unexpected warning:\n%s", out)
	}
}
