package main

// Notes:
// - Real converter and Chrome detection depend on the host and are not
//   exercised; probes are replaced through doctorProbes.
// - The Chrome version check runs the binary, so only the "not found"
//   paths are covered here.

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/luxdoc/doc2quiz/internal/render"
)

type downRenderer struct{ name string }

func (d downRenderer) Name() string { return d.name }

func (d downRenderer) Available(context.Context) error {
	return errors.New(d.name + ": not installed")
}

func (d downRenderer) Render(context.Context, string, string) (string, error) {
	return "", errors.New("unavailable")
}

func probesWith(chromeFound bool, backends ...render.Renderer) doctorProbes {
	return doctorProbes{
		backends: func(render.Options) []render.Renderer { return backends },
		lookChrome: func() (string, bool) {
			if chromeFound {
				return "/nonexistent/chrome", true
			}
			return "", false
		},
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctor - Status from probes
// ---------------------------------------------------------------------------

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		probes     doctorProbes
		wantStatus string
		wantError  string
		wantWarn   string
	}{
		{
			name:       "converter available, no chrome",
			probes:     probesWith(false, downRenderer{"word"}, &fakeRenderer{}),
			wantStatus: "warnings",
			wantWarn:   "--proof-pdf is unavailable",
		},
		{
			name:       "no converter",
			probes:     probesWith(false, downRenderer{"libreoffice"}),
			wantStatus: "errors",
			wantError:  "No document converter found",
		},
		{
			name:       "chrome path missing on disk",
			probes:     probesWith(true, &fakeRenderer{}),
			wantStatus: "warnings",
			wantWarn:   "Chrome not found at /nonexistent/chrome",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _, _ := testEnvironment(nil)
			result := runDoctor(context.Background(), env, tt.probes)

			if result.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q (errors %v, warnings %v)", result.Status, tt.wantStatus, result.Errors, result.Warnings)
			}
			if tt.wantError != "" && !strings.Contains(strings.Join(result.Errors, "\n"), tt.wantError) {
				t.Errorf("Errors = %v, want %q", result.Errors, tt.wantError)
			}
			if tt.wantWarn != "" && !strings.Contains(strings.Join(result.Warnings, "\n"), tt.wantWarn) {
				t.Errorf("Warnings = %v, want %q", result.Warnings, tt.wantWarn)
			}
		})
	}
}

func TestRunDoctor_RendererDetails(t *testing.T) {
	t.Parallel()

	env, _, _, _ := testEnvironment(map[string]string{"DOC2QUIZ_SOFFICE": "/opt/lo/soffice"})

	var gotOpts render.Options
	probes := probesWith(false, downRenderer{"word"}, &fakeRenderer{})
	backends := probes.backends
	probes.backends = func(o render.Options) []render.Renderer {
		gotOpts = o
		return backends(o)
	}

	result := runDoctor(context.Background(), env, probes)

	if gotOpts.SofficePath != "/opt/lo/soffice" {
		t.Errorf("probe SofficePath = %q, want DOC2QUIZ_SOFFICE", gotOpts.SofficePath)
	}
	if len(result.Renderers) != 2 {
		t.Fatalf("Renderers = %+v", result.Renderers)
	}
	if r := result.Renderers[0]; r.Available || !strings.Contains(r.Detail, "not installed") {
		t.Errorf("word = %+v", r)
	}
	if r := result.Renderers[1]; !r.Available || r.Name != "fake" {
		t.Errorf("fake = %+v", r)
	}

	var buf bytes.Buffer
	printDoctorResult(&buf, result)
	for _, want := range []string{"[--] word: word: not installed", "[OK] fake", "Status: Ready with warnings"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

// ---------------------------------------------------------------------------
// TestIsContainer - Detection signals
// ---------------------------------------------------------------------------

func TestIsContainer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		vars     map[string]string
		wantHint string
	}{
		{"explicit", map[string]string{"DOC2QUIZ_CONTAINER": "1"}, "DOC2QUIZ_CONTAINER=1"},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, "KUBERNETES_SERVICE_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, hint := isContainer(func(k string) string { return tt.vars[k] })
			if !got {
				t.Fatal("isContainer() = false")
			}
			// /.dockerenv takes precedence over the variables below it.
			if hint != tt.wantHint && hint != "/.dockerenv" {
				t.Errorf("hint = %q, want %q", hint, tt.wantHint)
			}
		})
	}
}

func TestCheckEnvironment_CI(t *testing.T) {
	t.Parallel()

	env, _, _, _ := testEnvironment(map[string]string{"GITHUB_ACTIONS": "true"})
	result := &doctorResult{Chrome: chromeInfo{Found: true}}
	checkEnvironment(result, env)

	if !result.Env.CI {
		t.Error("CI not detected")
	}
	if !strings.Contains(strings.Join(result.Warnings, "\n"), "ROD_NO_SANDBOX") {
		t.Errorf("Warnings = %v, want sandbox warning", result.Warnings)
	}
}
