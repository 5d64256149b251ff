package main

import (
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"dirtree/cmd"
	"dirtree/pkg/logging"
	"dirtree/pkg/version"
)

func main() {
	logger, err := logging.New(false, version.AppName, version.Get().Version)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := cmd.Execute(logger); err != nil {
		logger.Fatal("dirtree execution failed", zap.Error(err))
	}

	// Syncing a pipe or /dev/null fails with EINVAL on some platforms.
	if term.IsTerminal(int(os.Stderr.Fd())) || isRegularFile(os.Stderr) {
		if syncErr := logger.Sync(); syncErr != nil {
			if !strings.Contains(strings.ToLower(syncErr.Error()), "invalid argument") {
				log.Printf("Logger sync failed: %v", syncErr)
			}
		}
	}
}

// isRegularFile reports whether f is backed by a regular file.
func isRegularFile(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
