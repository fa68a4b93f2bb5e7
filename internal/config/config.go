package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"AT_ENV" default:"development"`

	HTTPPort    int           `envconfig:"AT_HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"AT_HTTP_TIMEOUT" default:"15s"`

	UploadDir string `envconfig:"AT_UPLOAD_DIR" default:"./uploads"`
	WorkDir   string `envconfig:"AT_WORK_DIR" default:"./work"`
	StateFile string `envconfig:"AT_STATE_FILE" default:"./state.json"`

	MaxUploadSize int64 `envconfig:"AT_MAX_UPLOAD_SIZE" default:"104857600"`

	ChunkDuration    time.Duration `envconfig:"AT_CHUNK_DURATION" default:"30s"`
	MinAudioDuration time.Duration `envconfig:"AT_MIN_AUDIO_DURATION" default:"1s"`
	ChunkWorkers     int           `envconfig:"AT_CHUNK_WORKERS" default:"3"`
	SampleRate       int           `envconfig:"AT_SAMPLE_RATE" default:"22050"`

	SarvamBaseURL  string        `envconfig:"AT_SARVAM_BASE_URL" default:"https://api.sarvam.ai"`
	RequestTimeout time.Duration `envconfig:"AT_REQUEST_TIMEOUT" default:"60s"`
	RetryAttempts  int           `envconfig:"AT_RETRY_ATTEMPTS" default:"3"`

	ShutdownTimeout time.Duration `envconfig:"AT_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"AT_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"AT_LOG_FORMAT" default:"json"`
	LogFile   string `envconfig:"AT_LOG_FILE" default:""`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.ChunkWorkers <= 0 {
		return fmt.Errorf("chunk workers must be positive: %d", c.ChunkWorkers)
	}

	if c.ChunkDuration <= 0 {
		return fmt.Errorf("chunk duration must be positive: %s", c.ChunkDuration)
	}

	if c.MinAudioDuration <= 0 || c.MinAudioDuration > c.ChunkDuration {
		return fmt.Errorf("invalid minimal audio duration: %s", c.MinAudioDuration)
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive: %d", c.MaxUploadSize)
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %d", c.SampleRate)
	}

	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry attempts must be positive: %d", c.RetryAttempts)
	}

	if c.UploadDir == "" {
		return fmt.Errorf("upload directory cannot be empty")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work directory cannot be empty")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state file cannot be empty")
	}

	return nil
}
