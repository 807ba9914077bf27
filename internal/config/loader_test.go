package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aceai/aceai/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"ACEAI_CONFIG",
		"ACEAI_ADDR",
		"ACEAI_LOG_LEVEL",
		"ACEAI_QUESTION_SERVICE_URL",
		"ACEAI_FEEDBACK_SERVICE_URL",
		"ACEAI_QUEUE_SIZE",
		"ACEAI_WORKER_COUNT",
		"ACEAI_INFLIGHT_SIZE",
		"ACEAI_SHARD_COUNT",
		"ACEAI_MAX_UPLOAD_MB",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ACEAI_ADDR", ":9090")
			_ = os.Setenv("ACEAI_QUEUE_SIZE", "64")
			_ = os.Setenv("ACEAI_WORKER_COUNT", "2")
			_ = os.Setenv("ACEAI_QUESTION_SERVICE_URL", "http://localhost:7001")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.QuestionServiceURL, convey.ShouldEqual, "http://localhost:7001")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "aceai.yaml")
			yaml := "addr: \":7070\"\nworker_count: 3\nfeedback_service_url: \"http://localhost:7002\"\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("ACEAI_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.FeedbackServiceURL, convey.ShouldEqual, "http://localhost:7002")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("ACEAI_CONFIG", "/nonexistent/aceai.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
