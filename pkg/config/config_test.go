package config_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dirtree/pkg/config"
)

const workingDirectory = "/work"

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll(workingDirectory, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, content := range files {
		if err := afero.WriteFile(fsys, filepath.Join(workingDirectory, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fsys
}

func TestLoadDefaults(t *testing.T) {
	settings, err := config.NewLoader(newFs(t, nil), nil).Load(workingDirectory, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := config.Settings{
		Output:         "directory_tree.txt",
		MaxFilesPerDir: 15,
		IgnoreFile:     ".gitignore",
	}
	if settings != want {
		t.Fatalf("settings = %+v, want %+v", settings, want)
	}
}

func TestLoadImplicitConfigFile(t *testing.T) {
	fsys := newFs(t, map[string]string{
		config.DefaultConfigFileName: "output: tree.txt\nmax_files_per_dir: 3\nuse_ignore_patterns: true\n",
	})

	settings, err := config.NewLoader(fsys, nil).Load(workingDirectory, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if settings.Output != "tree.txt" || settings.MaxFilesPerDir != 3 || !settings.UseIgnorePatterns {
		t.Fatalf("config file values not applied: %+v", settings)
	}
	if settings.IgnoreFile != ".gitignore" {
		t.Fatalf("unset keys must keep defaults, got %+v", settings)
	}
}

func TestLoadExplicitConfigFile(t *testing.T) {
	fsys := newFs(t, map[string]string{
		"custom.yml": "ignore_file: .treeignore\n",
	})

	settings, err := config.NewLoader(fsys, nil).Load(workingDirectory, "custom.yml")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if settings.IgnoreFile != ".treeignore" {
		t.Fatalf("IgnoreFile = %q, want .treeignore", settings.IgnoreFile)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("DIRTREE_MAX_FILES_PER_DIR", "4")
	fsys := newFs(t, map[string]string{
		config.DefaultConfigFileName: "max_files_per_dir: 9\n",
	})

	settings, err := config.NewLoader(fsys, nil).Load(workingDirectory, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if settings.MaxFilesPerDir != 4 {
		t.Fatalf("MaxFilesPerDir = %d, want 4", settings.MaxFilesPerDir)
	}
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name         string
		files        map[string]string
		explicitPath string
		wantMessage  string
	}{
		{
			name:         "missing explicit file",
			explicitPath: "absent.yaml",
			wantMessage:  "stat configuration",
		},
		{
			name:        "negative cap",
			files:       map[string]string{config.DefaultConfigFileName: "max_files_per_dir: -1\n"},
			wantMessage: "must not be negative",
		},
		{
			name:        "empty output",
			files:       map[string]string{config.DefaultConfigFileName: "output: \"  \"\n"},
			wantMessage: "must not be empty",
		},
		{
			name:        "malformed yaml",
			files:       map[string]string{config.DefaultConfigFileName: "output: [unclosed\n"},
			wantMessage: "read configuration",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := config.NewLoader(newFs(t, testCase.files), nil).Load(workingDirectory, testCase.explicitPath)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), testCase.wantMessage) {
				t.Fatalf("error %q does not mention %q", err, testCase.wantMessage)
			}
		})
	}
}

func TestLoadRejectsDirectoryAsConfig(t *testing.T) {
	fsys := newFs(t, nil)
	if err := fsys.MkdirAll(filepath.Join(workingDirectory, "conf.d"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, err := config.NewLoader(fsys, nil).Load(workingDirectory, "conf.d"); err == nil {
		t.Fatal("expected an error for a directory config path")
	}
}

func TestLoadReportsImplicitFileAndEnvironment(t *testing.T) {
	t.Setenv(config.EnvVariable(config.KeyOutput), "env-tree.txt")
	fsys := newFs(t, map[string]string{
		config.DefaultConfigFileName: "max_files_per_dir: 2\n",
	})
	core, recorded := observer.New(zapcore.InfoLevel)

	settings, err := config.NewLoader(fsys, zap.New(core)).Load(workingDirectory, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if settings.Output != "env-tree.txt" || settings.MaxFilesPerDir != 2 {
		t.Fatalf("unexpected settings %+v", settings)
	}

	fileEntries := recorded.FilterMessage("Applied configuration file").All()
	if len(fileEntries) != 1 || fileEntries[0].ContextMap()["implicit"] != true {
		t.Fatalf("expected one implicit config file entry, got %v", recorded.All())
	}
	envEntries := recorded.FilterMessage("Applied environment override").All()
	if len(envEntries) != 1 || envEntries[0].ContextMap()["variable"] != "DIRTREE_OUTPUT" {
		t.Fatalf("expected one environment override entry, got %v", recorded.All())
	}
}

func TestLoadQuietWithoutOverrides(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	if _, err := config.NewLoader(newFs(t, nil), zap.New(core)).Load(workingDirectory, ""); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if recorded.Len() != 0 {
		t.Fatalf("expected no info entries for a bare run, got %v", recorded.All())
	}
}
