package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iVampireSP/hiltagg/internal/ir"
	"github.com/spf13/pflag"
)

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "go.mod", "module example.com/app\n\ngo 1.23\n")

	cfg, err := LoadConfig(root, "", nil)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Module != "example.com/app" {
		t.Errorf("Module = %q", cfg.Module)
	}
	if cfg.MetadataDir != filepath.Join(root, "build/hilt") || cfg.OutputDir != cfg.MetadataDir {
		t.Errorf("MetadataDir = %q, OutputDir = %q", cfg.MetadataDir, cfg.OutputDir)
	}
	if cfg.ShareTestComponents || cfg.DisableCrossCompilationRootValidation {
		t.Errorf("boolean options should default to false: %+v", cfg)
	}

	opts, err := cfg.PassOptions()
	if err != nil {
		t.Fatalf("PassOptions() error: %v", err)
	}
	want := ir.DefaultOptions()
	if opts.DefaultRoot != want.DefaultRoot || opts.SharedDestinationPackage != want.SharedDestinationPackage {
		t.Errorf("PassOptions() = %+v, want defaults %+v", opts, want)
	}
	if len(opts.EarlyEntryPointExcludedComponents) != 1 || opts.EarlyEntryPointExcludedComponents[0] != ir.SingletonComponent {
		t.Errorf("EarlyEntryPointExcludedComponents = %v", opts.EarlyEntryPointExcludedComponents)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "go.mod", "module example.com/app\n")
	writeTestFile(t, root, "generate.go", `package app

//hilt:option dagger.hilt.shareTestComponents=true
//hilt:option metadata-dir=from-generate output-dir=out
//go:generate go run github.com/iVampireSP/hiltagg@latest process
`)
	writeTestFile(t, root, "hilt.yaml", "metadata-dir: from-config\nexclude: [stale, old/]\n")
	t.Setenv("HILT_DISABLE_CROSS_COMPILATION_ROOT_VALIDATION", "true")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(keyDefaultRoot, "", "")
	if err := flags.Parse([]string{"--" + keyDefaultRoot + "=com.example.Shared"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root, "", flags)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !cfg.ShareTestComponents {
		t.Error("generate.go processor option was ignored")
	}
	if cfg.MetadataDir != filepath.Join(root, "from-config") {
		t.Errorf("MetadataDir = %q, hilt.yaml should win over generate.go", cfg.MetadataDir)
	}
	if cfg.OutputDir != filepath.Join(root, "out") {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if len(cfg.Exclude) != 2 {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if !cfg.DisableCrossCompilationRootValidation {
		t.Error("HILT_ env var was ignored")
	}
	if cfg.DefaultRoot != "com.example.Shared" {
		t.Errorf("DefaultRoot = %q, flag should win", cfg.DefaultRoot)
	}
}

func TestLoadConfig_ProcessorOptionNames(t *testing.T) {
	t.Run("hilt.yaml", func(t *testing.T) {
		root := t.TempDir()
		writeTestFile(t, root, "go.mod", "module example.com/app\n")
		writeTestFile(t, root, "hilt.yaml", "dagger.hilt.shareTestComponents: true\n")

		cfg, err := LoadConfig(root, "", nil)
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}
		if !cfg.ShareTestComponents {
			t.Error("dagger.hilt.shareTestComponents in hilt.yaml was ignored")
		}
	})
	t.Run("env", func(t *testing.T) {
		root := t.TempDir()
		t.Setenv("HILT_DAGGER_HILT_DISABLECROSSCOMPILATIONROOTVALIDATION", "true")

		cfg, err := LoadConfig(root, "", nil)
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}
		if !cfg.DisableCrossCompilationRootValidation {
			t.Error("HILT_DAGGER_HILT_DISABLECROSSCOMPILATIONROOTVALIDATION was ignored")
		}
	})
	t.Run("flag wins", func(t *testing.T) {
		root := t.TempDir()
		writeTestFile(t, root, "hilt.yaml", "dagger:\n  hilt:\n    shareTestComponents: true\n")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Bool(keyShareTestComponents, false, "")
		if err := flags.Parse([]string{"--" + keyShareTestComponents + "=false"}); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfig(root, "", flags)
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}
		if cfg.ShareTestComponents {
			t.Error("explicit flag should beat the processor option name")
		}
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("unknown generate.go option", func(t *testing.T) {
		root := t.TempDir()
		writeTestFile(t, root, "generate.go", "package app\n//hilt:option nope=1\n")
		if _, err := LoadConfig(root, "", nil); err == nil {
			t.Error("LoadConfig() should reject unknown options")
		}
	})
	t.Run("malformed generate.go option", func(t *testing.T) {
		root := t.TempDir()
		writeTestFile(t, root, "generate.go", "package app\n//hilt:option share-test-components\n")
		if _, err := LoadConfig(root, "", nil); err == nil {
			t.Error("LoadConfig() should reject options without a value")
		}
	})
	t.Run("missing explicit config file", func(t *testing.T) {
		root := t.TempDir()
		if _, err := LoadConfig(root, filepath.Join(root, "missing.yaml"), nil); err == nil {
			t.Error("LoadConfig() should fail for a missing --config file")
		}
	})
	t.Run("bad default root", func(t *testing.T) {
		cfg := &Config{DefaultRoot: "a..B"}
		if _, err := cfg.PassOptions(); err == nil {
			t.Error("PassOptions() should reject a malformed default root")
		}
	})
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "go.mod", "module example.com/app\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := findRoot(nested)
	if err != nil {
		t.Fatalf("findRoot() error: %v", err)
	}
	if got != root {
		t.Errorf("findRoot() = %q, want %q", got, root)
	}
}
