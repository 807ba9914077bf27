// Package config defines gateway configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults -> optional file -> env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QuestionServiceURL is the base URL of the question-generation service.
	QuestionServiceURL string `koanf:"question_service_url"`

	// FeedbackServiceURL is the base URL of the answer-scoring service.
	FeedbackServiceURL string `koanf:"feedback_service_url"`

	// ClientTimeoutMS bounds a single outbound HTTP call.
	ClientTimeoutMS int `koanf:"client_timeout_ms"`

	// MaxUploadMB caps the resume multipart body size.
	MaxUploadMB int64 `koanf:"max_upload_mb"`

	// QueueSize bounds the in-memory scoring submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// InflightSize bounds the duplicate-submission guard.
	InflightSize int `koanf:"inflight_size"`

	// ShardCount configures the number of shards in the session registry.
	ShardCount int `koanf:"shard_count"`
}

// New creates a Config populated with defaults. The default service URLs
// point at the hosted AceAI collaborators and are normally overridden for
// local development via ACEAI_* env vars or a config file.
func New() *Config {
	c := &Config{
		LogLevel:           "info",
		Addr:               ":8080",
		QuestionServiceURL: "https://llm-api-8yhu.onrender.com",
		FeedbackServiceURL: "https://feedback-api-86n9.onrender.com",
		ClientTimeoutMS:    30_000,
		MaxUploadMB:        10,
		QueueSize:          1024,
		WorkerCount:        runtime.NumCPU(),
		InflightSize:       10_000,
		ShardCount:         8,
	}
	return c
}
