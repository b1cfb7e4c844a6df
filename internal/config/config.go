package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the console
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
	Server      struct {
		Port            int           `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"readTimeout"`
		WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		MaxUploadBytes  int64         `mapstructure:"maxUploadBytes"` // Upper bound for CSV uploads
	} `mapstructure:"server"`
	API     APIConfig `mapstructure:"api"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	Conversation struct {
		RegistrySize int           `mapstructure:"registrySize"` // Max aggregators kept in memory
		RegistryTTL  time.Duration `mapstructure:"registryTTL"`  // Idle aggregators are dropped after this
	} `mapstructure:"conversation"`
	WorkerPools struct {
		BulkStatus WorkerPoolConfig `mapstructure:"bulkStatus"`
	} `mapstructure:"workerPools"`
}

// APIConfig describes how to reach the lead-management backend.
type APIConfig struct {
	BaseURL         string        `mapstructure:"baseURL"`
	Timeout         time.Duration `mapstructure:"timeout"`         // Per-request timeout, 0 disables it
	RetryMaxElapsed time.Duration `mapstructure:"retryMaxElapsed"` // Total retry budget for idempotent reads
	ReadyTimeout    time.Duration `mapstructure:"readyTimeout"`    // Budget for the readiness probe
}

// WorkerPoolConfig holds configuration for a bounded worker pool
type WorkerPoolConfig struct {
	PoolSize   int           `mapstructure:"poolSize"`   // Number of workers
	QueueSize  int           `mapstructure:"queueSize"`  // Max tasks waiting for a worker
	ExpiryTime time.Duration `mapstructure:"expiryTime"` // Idle worker expiry time
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("environment", "development")
	v.SetDefault("logLevel", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.maxUploadBytes", 10<<20)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 2112)

	v.SetDefault("api.baseURL", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.retryMaxElapsed", 5*time.Second)
	v.SetDefault("api.readyTimeout", 2*time.Second)

	v.SetDefault("cors.allowedOrigins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("conversation.registrySize", 256)
	v.SetDefault("conversation.registryTTL", 30*time.Minute)

	// WorkerPools Defaults
	v.SetDefault("workerPools.bulkStatus.poolSize", 8)
	v.SetDefault("workerPools.bulkStatus.queueSize", 1000)
	v.SetDefault("workerPools.bulkStatus.expiryTime", time.Minute)

	// Config file settings
	v.SetConfigName("default")
	v.SetConfigType("yaml")

	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("$HOME/.lead-console")
	v.AddConfigPath("/etc/lead-console")

	// It's ok if config file is not found, we'll use env vars
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvs(v, Config{})

	// Read directly from ENV for critical values
	if baseURL := os.Getenv("API_BASE_URL"); baseURL != "" {
		v.Set("api.baseURL", baseURL)
	}
	if lgLevel := os.Getenv("LOG_LEVEL"); lgLevel != "" {
		v.Set("logLevel", lgLevel)
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT %q: %w", port, err)
		}
		v.Set("server.port", p)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")
	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("api.baseURL must not be empty")
	}

	return &config, nil
}

// bindEnvs recursively binds environment variables to config struct fields
func bindEnvs(v *viper.Viper, cfg interface{}, parts ...string) {
	ifv := reflect.ValueOf(cfg)
	ift := reflect.TypeOf(cfg)
	for i := 0; i < ift.NumField(); i++ {
		fieldVal := ifv.Field(i)
		fieldType := ift.Field(i)

		tag := fieldType.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		path := append(append([]string{}, parts...), tag)
		key := strings.Join(path, ".")

		if fieldType.Type.Kind() == reflect.Struct {
			bindEnvs(v, fieldVal.Interface(), path...)
			continue
		}

		_ = v.BindEnv(key)
	}
}
