package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docsema/internal/commands"
	"docsema/internal/comment"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[analysis]
max_diagnostics = 20
warnings_as_errors = true
jobs = 4

[cache]
enabled = true
dir = "/tmp/docsema-cache"

[[commands]]
name = "exceptionsafety"
args = 1
requires = ["callable"]

[[commands]]
name = "kbd"
kind = "inline"
render = "monospaced"
args = 1

[[commands]]
name = "mermaid"
kind = "verbatim"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path || cfg.Analysis.MaxDiagnostics != 20 || !cfg.Analysis.WarningsAsErrors || cfg.Analysis.Jobs != 4 {
		t.Fatalf("analysis = %+v", cfg.Analysis)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Dir != "/tmp/docsema-cache" {
		t.Fatalf("cache = %+v", cfg.Cache)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	es, ok := reg.Lookup("exceptionsafety")
	if !ok || es.Kind != commands.KindBlock || es.NumArgs != 1 || !es.Requires.Has(commands.RequiresCallable) || es.Builtin {
		t.Errorf("exceptionsafety = %+v", es)
	}
	kbd, ok := reg.Lookup("kbd")
	if !ok || kbd.Kind != commands.KindInline || kbd.Render != comment.RenderMonospaced {
		t.Errorf("kbd = %+v", kbd)
	}
	mermaid, ok := reg.Lookup("mermaid")
	if !ok || mermaid.Kind != commands.KindVerbatimBlock || mermaid.EndName != "endmermaid" {
		t.Errorf("mermaid = %+v", mermaid)
	}
	if _, ok := reg.Lookup("brief"); !ok {
		t.Error("builtin commands missing")
	}
}

// Пример из документации docsema.toml должен загружаться как есть.
func TestLoadDocumentedExample(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[analysis]
max_diagnostics = 100
warnings_as_errors = false
jobs = 0

[cache]
enabled = false
dir = ""          # default $XDG_CACHE_HOME/docsema

[[commands]]      # extends the builtin command table
name = "exceptionsafety"
kind = "block"    # block | inline | verbatim | verbatim-line
singleton = ""    # brief | returns
args = 1
render = ""       # normal | bold | monospaced | emphasized
end = ""          # close name for verbatim blocks
requires = []     # callable | non-void | template
param = false
tparam = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	info, ok := reg.Lookup("exceptionsafety")
	if !ok || info.Builtin || info.Kind != commands.KindBlock || info.NumArgs != 1 {
		t.Fatalf("exceptionsafety = %+v", info)
	}
}

func TestBuiltinNamesCannotBeRedefined(t *testing.T) {
	for _, name := range []string{"retval", "dot", "throws"} {
		path := writeConfig(t, t.TempDir(), "[[commands]]\nname = \""+name+"\"\n")
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "conflicts with builtin") || !strings.HasPrefix(err.Error(), path) {
			t.Fatalf("%s: expected a builtin conflict naming the file, got %v", name, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "[cache]\nenabled = false\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.MaxDiagnostics != 100 || len(cfg.Commands) != 0 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrorsNameTheFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[analysis\n", "failed to parse TOML"},
		{"unknown key", "[analysis]\nmax_diag = 1\n", "unknown keys: analysis.max_diag"},
		{"negative jobs", "[analysis]\njobs = -1\n", "jobs must not be negative"},
		{"bad kind", "[[commands]]\nname = \"x\"\nkind = \"weird\"\n", `unknown command kind "weird"`},
		{"builtin clash", "[[commands]]\nname = \"brief\"\n", "conflicts with builtin block command"},
		{"missing name", "[[commands]]\nkind = \"inline\"\n", "#1: missing name"},
		{"bad requirement", "[[commands]]\nname = \"x\"\nrequires = [\"pure\"]\n", `unknown requirement "pure"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.HasPrefix(err.Error(), path+": ") || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q should start with the path and mention %q", err, tt.want)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: %v %v", ok, err)
	}
	want, _ := filepath.Abs(path)
	if got != want {
		t.Fatalf("Find = %q, want %q", got, want)
	}

	cfg, err := Discover(nested)
	if err != nil || cfg.Path != want {
		t.Fatalf("Discover = %+v, %v", cfg, err)
	}
}
