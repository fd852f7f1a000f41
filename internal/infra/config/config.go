package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort       int    `env:"HTTP_PORT"        envDefault:"7860"`
	GinMode        string `env:"GIN_MODE"         envDefault:"release"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"209715200"`

	TempDir   string `env:"TEMP_DIR"   envDefault:"demo/tmp"`
	OutputDir string `env:"OUTPUT_DIR" envDefault:"demo/outputs"`

	NormalizeSize int    `env:"NORMALIZE_SIZE" envDefault:"512"`
	NormalizeFPS  int    `env:"NORMALIZE_FPS"  envDefault:"25"`
	FFmpegPath    string `env:"FFMPEG_PATH"    envDefault:"ffmpeg"`
	FFprobePath   string `env:"FFPROBE_PATH"   envDefault:"ffprobe"`
	// Decoded pixel cap for reference images, checked before decoding.
	MaxImagePixels int `env:"MAX_IMAGE_PIXELS" envDefault:"40000000"`

	AnimatorProgram     string        `env:"ANIMATOR_PROGRAM"      envDefault:"python"`
	AnimatorArgs        []string      `env:"ANIMATOR_ARGS"         envDefault:"-m demo.animate_dist" envSeparator:" "`
	AnimatorWorkDir     string        `env:"ANIMATOR_WORKDIR"      envDefault:"."`
	AnimatorTimeout     time.Duration `env:"ANIMATOR_TIMEOUT"      envDefault:"30m"`
	AnimatorStderrLimit int           `env:"ANIMATOR_STDERR_LIMIT" envDefault:"8192"`

	MaxConcurrentGenerations int           `env:"MAX_CONCURRENT_GENERATIONS" envDefault:"1"`
	GenerationQueueTimeout   time.Duration `env:"GENERATION_QUEUE_TIMEOUT"   envDefault:"30s"`

	// Status events are disabled when RabbitMQURL is empty.
	RabbitMQURL              string `env:"RABBITMQ_URL"`
	RabbitMQExchange         string `env:"RABBITMQ_EXCHANGE"           envDefault:"fiapx.animate"`
	RabbitMQStatusRoutingKey string `env:"RABBITMQ_STATUS_ROUTING_KEY" envDefault:"animation.status"`

	MetricsPort    int    `env:"METRICS_PORT"    envDefault:"8083"`
	JaegerEndpoint string `env:"JAEGER_ENDPOINT"`
	LogLevel       string `env:"LOG_LEVEL"       envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	// libx264 with yuv420p rejects odd dimensions.
	if c.NormalizeSize <= 0 || c.NormalizeSize%2 != 0 {
		errs = append(errs, fmt.Errorf("NORMALIZE_SIZE must be a positive even number, got %d", c.NormalizeSize))
	}
	if c.NormalizeFPS <= 0 {
		errs = append(errs, fmt.Errorf("NORMALIZE_FPS must be positive, got %d", c.NormalizeFPS))
	}
	if c.AnimatorProgram == "" {
		errs = append(errs, errors.New("ANIMATOR_PROGRAM must not be empty"))
	}
	if c.AnimatorTimeout < 0 {
		errs = append(errs, fmt.Errorf("ANIMATOR_TIMEOUT must not be negative, got %s", c.AnimatorTimeout))
	}
	if c.MaxConcurrentGenerations < 1 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENT_GENERATIONS must be at least 1, got %d", c.MaxConcurrentGenerations))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	if c.MaxImagePixels <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_PIXELS must be positive, got %d", c.MaxImagePixels))
	}
	return errors.Join(errs...)
}
