package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dirtree/pkg/config"
	"dirtree/pkg/ignore"
	"dirtree/pkg/logging"
	"dirtree/pkg/tree"
	"dirtree/pkg/version"
)

const (
	configFlag     = "config"
	outputFlag     = "output"
	maxFilesFlag   = "max-files"
	ignoreFileFlag = "ignore-file"
	useIgnoreFlag  = "use-ignore"
	debugFlag      = "debug"

	savedMessageFormat = "Directory tree has been saved to %s\n"
	outputFileMode     = 0o644
)

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	outputFlag:     config.KeyOutput,
	maxFilesFlag:   config.KeyMaxFilesPerDir,
	ignoreFileFlag: config.KeyIgnoreFile,
	useIgnoreFlag:  config.KeyUseIgnorePatterns,
	debugFlag:      config.KeyDebug,
}

// Dependencies are the collaborators the commands run against.
type Dependencies struct {
	Fs               afero.Fs
	Logger           *zap.Logger
	WorkingDirectory func() (string, error)
}

// Execute builds the root command against the real filesystem and runs it.
func Execute(logger *zap.Logger) error {
	return NewRootCommand(Dependencies{
		Fs:               afero.NewOsFs(),
		Logger:           logger,
		WorkingDirectory: os.Getwd,
	}).Execute()
}

// NewRootCommand returns the dirtree command. Run without arguments it renders
// the working directory into the output file.
func NewRootCommand(deps Dependencies) *cobra.Command {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.WorkingDirectory == nil {
		deps.WorkingDirectory = os.Getwd
	}

	loader := config.NewLoader(deps.Fs, deps.Logger)
	var configPath string

	rootCmd := &cobra.Command{
		Use:   version.AppName,
		Short: "Render the working directory as an ASCII tree",
		Long: `dirtree walks the working directory and writes an ASCII tree of it to a text file.
Hidden entries and dependency/build directories are skipped, conventional project
files are listed first, and long file lists are cut with an ellipsis row.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for flagName, key := range flagKeys {
				if err := loader.Reader().BindPFlag(key, cmd.Flags().Lookup(flagName)); err != nil {
					return fmt.Errorf("error binding flag %s: %w", flagName, err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := deps.WorkingDirectory()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			settings, err := loader.Load(root, configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger := deps.Logger
			if settings.Debug {
				debugLogger, err := logging.New(true, version.AppName, version.Get().Version)
				if err != nil {
					return fmt.Errorf("failed to initialize debug logger: %w", err)
				}
				defer debugLogger.Sync()
				logger = debugLogger
			}

			outputPath, err := writeTree(deps.Fs, logger, root, settings)
			if err != nil {
				return err
			}
			logger.Debug("Directory tree written", zap.String("outputFile", outputPath))

			_, err = fmt.Fprintf(cmd.OutOrStdout(), savedMessageFormat, settings.Output)
			return err
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&configPath, configFlag, "", "Path to a YAML config file (default ./"+config.DefaultConfigFileName+" when present)")
	flags.StringP(outputFlag, "o", config.DefaultOutputFile, "File the tree is written to")
	flags.IntP(maxFilesFlag, "m", tree.DefaultMaxFilesPerDir, "Maximum number of non-important files listed per directory")
	flags.String(ignoreFileFlag, ignore.DefaultFileName, "Ignore-pattern file read from the working directory")
	flags.Bool(useIgnoreFlag, false, "Exclude entries matching the loaded ignore patterns")
	flags.Bool(debugFlag, false, "Enable development logging")

	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// writeTree loads the ignore file, renders root and writes the result,
// returning the path written.
func writeTree(fsys afero.Fs, logger *zap.Logger, root string, settings config.Settings) (string, error) {
	patterns, err := ignore.LoadPatterns(fsys, resolvePath(root, settings.IgnoreFile), logger)
	if err != nil {
		logger.Error("Failed to load ignore patterns", zap.Error(err))
		return "", fmt.Errorf("failed to load ignore patterns: %w", err)
	}

	var opts []tree.Option
	if settings.UseIgnorePatterns {
		logger.Debug("Applying ignore patterns", zap.Strings("patterns", patterns.Sorted()))
		opts = append(opts, tree.WithIgnoreMatcher(root, ignore.Compile(patterns.Patterns()...)))
	} else if patterns.Len() > 0 {
		logger.Debug("Ignore patterns loaded but not applied", zap.Strings("patterns", patterns.Sorted()))
	}

	content, err := tree.NewGenerator(fsys, logger, opts...).Render(root, settings.MaxFilesPerDir)
	if err != nil {
		logger.Error("Failed to generate tree structure", zap.String("directory", root), zap.Error(err))
		return "", fmt.Errorf("failed to generate tree structure: %w", err)
	}

	outputPath := resolvePath(root, settings.Output)
	if err := afero.WriteFile(fsys, outputPath, []byte(content), outputFileMode); err != nil {
		logger.Error("Failed to write file", zap.String("path", outputPath), zap.Error(err))
		return "", fmt.Errorf("failed to write tree structure: %w", err)
	}
	return outputPath, nil
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
