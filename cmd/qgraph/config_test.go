package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"qgraph/internal/ir"
	"qgraph/internal/quant"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestFindConfigWalksUpwards(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := findConfig(nested)
	if err != nil {
		t.Fatalf("findConfig: %v", err)
	}
	if !ok || got != want {
		t.Fatalf("findConfig = %q, %v; want %q", got, ok, want)
	}
}

func TestReadConfigLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[quantize]
keep_unresolved_observers = true
`)
	cfg, err := readConfig(path)
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	want := defaultConfig()
	want.Quantize.KeepUnresolvedObservers = true
	want.Path = path
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestReadConfigReplacesObservers(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[trace]
level = "detail"

[observers.activation]
op = "prim::CallExtern"
name = "record"
`)
	cfg, err := readConfig(path)
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	want := map[string]observerConfig{"activation": {Op: "prim::CallExtern", Name: "record"}}
	if diff := cmp.Diff(want, cfg.Observers); diff != "" {
		t.Fatalf("observers mismatch (-want +got):\n%s", diff)
	}
	if cfg.Trace.Level != "detail" {
		t.Fatalf("trace level = %q, want detail", cfg.Trace.Level)
	}
}

func TestReadConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"unknown key", "[quantize]\nkeep = true\n", []string{"unknown keys: quantize.keep"}},
		{"syntax", "[quantize\n", []string{"failed to parse TOML"}},
		{
			"bad observers",
			"[observers.weights]\nop = \"quant::observe\"\n[observers.param]\nop = \"observe\"\n",
			[]string{"[observers.param].op", "[observers.weights]"},
		},
		{
			"observer op not an opaque call",
			"[observers.activation]\nop = \"aten::observe\"\n",
			[]string{"[observers.activation].op", "must be prim::CallExtern calls"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.body)
			_, err := readConfig(path)
			if err == nil {
				t.Fatal("expected error")
			}
			for _, w := range tc.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestDefaultTemplates(t *testing.T) {
	obs, err := defaultConfig().templates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	names := map[quant.ObserverKind]string{}
	for kind, n := range obs {
		if n.Kind() != ir.PrimCallExtern {
			t.Errorf("%s template kind = %s", kind, n.Kind())
		}
		c, ok := n.Attr("name")
		if !ok {
			t.Fatalf("%s template has no name attribute", kind)
		}
		names[kind] = c.StringValue
	}
	want := map[quant.ObserverKind]string{
		quant.ObserveActivation: "observe_activation",
		quant.ObserveParam:      "observe_param",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplatesRejectAliasedKinds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Observers["parameter"] = observerConfig{Op: "prim::CallExtern"}
	if _, err := cfg.templates(); err == nil || !strings.Contains(err.Error(), "configured twice") {
		t.Fatalf("templates err = %v, want duplicate kind error", err)
	}
}
