package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tie/mrpacker/pack"
)

// setupLogging points the default logger at stderr plus a fresh
// per-run log file under the logs directory. The caller closes the
// returned file on exit.
func setupLogging(cfg pack.Config) (*os.File, error) {
	if err := os.MkdirAll(cfg.LogsDir, 0755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("mod_updates_log_%s.txt", time.Now().Format("2006-01-02_15-04-05"))
	fpath := filepath.Join(cfg.LogsDir, name)
	f, err := os.Create(fpath)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(io.MultiWriter(os.Stderr, f), log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           parseLevel(cfg.LoggingLevel),
	})
	log.SetDefault(logger)
	log.Debugf("logging to %s", fpath)
	return f, nil
}

func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}
