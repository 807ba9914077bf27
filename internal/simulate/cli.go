package simulate

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/aceai/aceai/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sim_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the interview simulator.
func ShowHelp() {
	os.Stdout.WriteString(`AceAI Interview Simulator
=========================

Drives complete mock interviews against a running AceAI gateway:
resume upload, per-question recording and transcripts, advancement,
and final report verification.

Usage:
  go run cmd/interview-sim/main.go [options]

Options:
  -url string
        Base URL of the gateway (default "http://localhost:9080")
  -interviews int
        Number of interviews to run (default 10)
  -workers int
        Number of concurrent workers (default CPU cores)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for simulation output (default: sim_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/interview-sim/main.go

  # Heavier run against a remote gateway
  go run cmd/interview-sim/main.go -interviews 100 -workers 8 -url http://gateway:9080

  # Verbose single interview for debugging
  go run cmd/interview-sim/main.go -interviews 1 -workers 1 -verbose
`)
}
