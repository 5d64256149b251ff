// Package config resolves dirtree settings from defaults, an optional YAML
// file, DIRTREE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"dirtree/pkg/ignore"
	"dirtree/pkg/tree"
)

// Keys shared by viper, the config file and flag bindings.
const (
	KeyOutput            = "output"
	KeyMaxFilesPerDir    = "max_files_per_dir"
	KeyIgnoreFile        = "ignore_file"
	KeyUseIgnorePatterns = "use_ignore_patterns"
	KeyDebug             = "debug"
)

const (
	// DefaultOutputFile is written in the working directory and overwritten on every run.
	DefaultOutputFile = "directory_tree.txt"
	// DefaultConfigFileName is looked up in the working directory when no file is given.
	DefaultConfigFileName = ".dirtree.yaml"

	envPrefix = "DIRTREE"
)

// Settings holds the resolved options for one run.
type Settings struct {
	Output            string `mapstructure:"output"`
	MaxFilesPerDir    int    `mapstructure:"max_files_per_dir"`
	IgnoreFile        string `mapstructure:"ignore_file"`
	UseIgnorePatterns bool   `mapstructure:"use_ignore_patterns"`
	Debug             bool   `mapstructure:"debug"`
}

// Loader resolves Settings through a viper instance backed by an afero filesystem.
type Loader struct {
	fsys   afero.Fs
	reader *viper.Viper
	logger *zap.Logger
}

// allKeys lists every setting that can be overridden from the environment.
var allKeys = []string{KeyOutput, KeyMaxFilesPerDir, KeyIgnoreFile, KeyUseIgnorePatterns, KeyDebug}

// NewLoader returns a Loader reading through fsys with defaults and
// environment lookup configured. Applied config files and environment
// overrides are reported on logger at info level.
func NewLoader(fsys afero.Fs, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fsys: fsys, reader: newReader(fsys), logger: logger}
}

// Reader exposes the underlying viper instance so flags can be bound to it.
func (l *Loader) Reader() *viper.Viper {
	return l.reader
}

func newReader(fsys afero.Fs) *viper.Viper {
	reader := viper.New()
	reader.SetFs(fsys)
	reader.SetDefault(KeyOutput, DefaultOutputFile)
	reader.SetDefault(KeyMaxFilesPerDir, tree.DefaultMaxFilesPerDir)
	reader.SetDefault(KeyIgnoreFile, ignore.DefaultFileName)
	reader.SetDefault(KeyUseIgnorePatterns, false)
	reader.SetDefault(KeyDebug, false)
	reader.SetEnvPrefix(envPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	reader.AutomaticEnv()
	return reader
}

// Load reads the config file and decodes the merged settings.
// explicitPath must exist when set; otherwise DefaultConfigFileName in
// workingDirectory is read only if present.
func (l *Loader) Load(workingDirectory, explicitPath string) (Settings, error) {
	path, required := resolveConfigPath(workingDirectory, explicitPath)
	if err := l.readConfigFile(path, required); err != nil {
		return Settings{}, err
	}

	l.reportEnvironmentOverrides()

	var settings Settings
	if err := l.reader.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decode configuration: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate rejects settings the generator cannot honor.
func (s Settings) Validate() error {
	if s.MaxFilesPerDir < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyMaxFilesPerDir, s.MaxFilesPerDir)
	}
	if strings.TrimSpace(s.Output) == "" {
		return fmt.Errorf("%s must not be empty", KeyOutput)
	}
	return nil
}

func resolveConfigPath(workingDirectory, explicitPath string) (string, bool) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) || workingDirectory == "" {
			return explicitPath, true
		}
		return filepath.Join(workingDirectory, explicitPath), true
	}
	return filepath.Join(workingDirectory, DefaultConfigFileName), false
}

func (l *Loader) readConfigFile(path string, required bool) error {
	info, err := l.fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("stat configuration %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("configuration path %s is a directory", path)
	}

	l.reader.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		l.reader.SetConfigType("yaml")
	}
	if err := l.reader.ReadInConfig(); err != nil {
		return fmt.Errorf("read configuration from %s: %w", path, err)
	}
	l.logger.Info("Applied configuration file", zap.String("path", path), zap.Bool("implicit", !required))
	return nil
}

func (l *Loader) reportEnvironmentOverrides() {
	for _, key := range allKeys {
		variable := EnvVariable(key)
		if value, ok := os.LookupEnv(variable); ok {
			l.logger.Info("Applied environment override", zap.String("variable", variable), zap.String("value", value))
		}
	}
}

// EnvVariable returns the environment variable that overrides key.
func EnvVariable(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}
