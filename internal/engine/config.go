package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"tailf/internal/global"
	"time"
)

// Validated runtime configuration
type Config struct {
	// Sources
	Files         []global.FileSpec
	PositionFile  string
	FromBeginning bool

	// Batching
	FlushInterval time.Duration
	MaxBatchLines int
	MaxBatches    int

	// Reaping
	DeleteOldTailedFiles bool
	PostDeleteCommand    string

	// Destination
	Brokers       []string
	ProducerType  string
	Produce       bool
	BeatsEndpoint string
}

// Loads JSON config from file
func LoadConfig(path string) (cfg global.Config, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %v", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %v", path, err)
		return
	}

	return
}

// Parses JSON config into engine config
func NewEngineConf(cfg global.Config) (config Config, err error) {
	if len(cfg.Tailf.Files) == 0 {
		err = fmt.Errorf("tailf.files must list at least one file spec")
		return
	}
	for i, file := range cfg.Tailf.Files {
		if file.Topic == "" {
			err = fmt.Errorf("tailf.files[%d]: topic is required", i)
			return
		}
		if file.Prefix == "" {
			err = fmt.Errorf("tailf.files[%d]: prefix is required", i)
			return
		}
		if file.TimePattern == "" {
			err = fmt.Errorf("tailf.files[%d]: time_pattern is required", i)
			return
		}
	}

	if cfg.Tailf.PositionFile == "" {
		err = fmt.Errorf("tailf.position_file is required")
		return
	}
	if cfg.Tailf.FromBeginning == nil {
		err = fmt.Errorf("tailf.from_begining is required")
		return
	}

	config.BeatsEndpoint = cfg.Beats.Endpoint
	if config.BeatsEndpoint == "" {
		if len(cfg.Kafka.Brokers) == 0 {
			err = fmt.Errorf("kafka.brokers must list at least one broker")
			return
		}
		if cfg.Kafka.ProducerType != global.ProducerSync && cfg.Kafka.ProducerType != global.ProducerAsync {
			err = fmt.Errorf("kafka.producer_type must be '%s' or '%s'", global.ProducerSync, global.ProducerAsync)
			return
		}
	}

	config.Files = cfg.Tailf.Files
	config.PositionFile = cfg.Tailf.PositionFile
	config.FromBeginning = *cfg.Tailf.FromBeginning
	config.FlushInterval = time.Duration(cfg.Tailf.FlushInterval) * time.Second
	config.MaxBatchLines = cfg.Tailf.MaxBatchLines
	config.MaxBatches = cfg.Tailf.MaxBatches
	config.DeleteOldTailedFiles = cfg.Tailf.DeleteOldTailedFiles
	config.PostDeleteCommand = cfg.Tailf.PostDeleteCommand
	config.Brokers = cfg.Kafka.Brokers
	config.ProducerType = cfg.Kafka.ProducerType
	config.Produce = cfg.Kafka.Produce == nil || *cfg.Kafka.Produce

	config.setDefaults()
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	global.LogicalCPUCount = runtime.NumCPU()

	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Duration(global.DefaultFlushInterval) * time.Second
	}
	if cfg.MaxBatchLines <= 0 {
		cfg.MaxBatchLines = global.DefaultMaxBatchLines
	}
	if cfg.MaxBatches <= 0 {
		cfg.MaxBatches = global.DefaultMaxBatches
	}
}
