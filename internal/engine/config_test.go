package engine

import (
	"os"
	"path/filepath"
	"tailf/internal/global"
	"testing"
	"time"
)

func boolPtr(v bool) *bool { return &v }

func validConfig() (cfg global.Config) {
	cfg = global.Config{
		Tailf: global.TailfConfig{
			Files: []global.FileSpec{
				{Topic: "app", Prefix: "/var/log/app-", Suffix: ".log", TimePattern: "%Y-%m-%d"},
			},
			PositionFile:  "/var/cache/tailf/positions",
			FromBeginning: boolPtr(false),
		},
		Kafka: global.KafkaConfig{
			Brokers:      []string{"localhost:9092"},
			ProducerType: "sync",
		},
	}
	return
}

func TestNewEngineConf(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *global.Config)
		expectErr bool
	}{
		{
			name:   "valid config",
			mutate: func(cfg *global.Config) {},
		},
		{
			name:      "no file specs",
			mutate:    func(cfg *global.Config) { cfg.Tailf.Files = nil },
			expectErr: true,
		},
		{
			name:      "missing topic",
			mutate:    func(cfg *global.Config) { cfg.Tailf.Files[0].Topic = "" },
			expectErr: true,
		},
		{
			name:      "missing prefix",
			mutate:    func(cfg *global.Config) { cfg.Tailf.Files[0].Prefix = "" },
			expectErr: true,
		},
		{
			name:      "missing time pattern",
			mutate:    func(cfg *global.Config) { cfg.Tailf.Files[0].TimePattern = "" },
			expectErr: true,
		},
		{
			name:      "missing position file",
			mutate:    func(cfg *global.Config) { cfg.Tailf.PositionFile = "" },
			expectErr: true,
		},
		{
			name:      "missing from_begining",
			mutate:    func(cfg *global.Config) { cfg.Tailf.FromBeginning = nil },
			expectErr: true,
		},
		{
			name:      "missing brokers",
			mutate:    func(cfg *global.Config) { cfg.Kafka.Brokers = nil },
			expectErr: true,
		},
		{
			name:      "invalid producer type",
			mutate:    func(cfg *global.Config) { cfg.Kafka.ProducerType = "batched" },
			expectErr: true,
		},
		{
			name: "beats endpoint relaxes kafka requirements",
			mutate: func(cfg *global.Config) {
				cfg.Kafka = global.KafkaConfig{}
				cfg.Beats.Endpoint = "localhost:5044"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			_, err := NewEngineConf(cfg)
			if tt.expectErr && err == nil {
				t.Errorf("expected error")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	config, err := NewEngineConf(validConfig())
	if err != nil {
		t.Fatal(err)
	}

	if config.FlushInterval != time.Second {
		t.Errorf("expected default flush interval 1s, got %v", config.FlushInterval)
	}
	if config.MaxBatchLines != global.DefaultMaxBatchLines {
		t.Errorf("expected default max batch lines %d, got %d", global.DefaultMaxBatchLines, config.MaxBatchLines)
	}
	if config.MaxBatches != global.DefaultMaxBatches {
		t.Errorf("expected default max batches %d, got %d", global.DefaultMaxBatches, config.MaxBatches)
	}
	if !config.Produce {
		t.Errorf("expected produce to default true")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tailf.json")

	content := `{
		"tailf": {
			"files": [{"topic": "app", "prefix": "/var/log/app-", "suffix": ".log", "time_pattern": "%Y-%m-%d"}],
			"position_file": "/var/cache/tailf/positions",
			"from_begining": true,
			"max_batch_lines": 256
		},
		"kafka": {"brokers": ["k1:9092", "k2:9092"], "producer_type": "async", "produce": false}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	jsonCfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	config, err := NewEngineConf(jsonCfg)
	if err != nil {
		t.Fatal(err)
	}

	if !config.FromBeginning {
		t.Errorf("expected from beginning true")
	}
	if config.MaxBatchLines != 256 {
		t.Errorf("expected max batch lines 256, got %d", config.MaxBatchLines)
	}
	if config.Produce {
		t.Errorf("expected produce false")
	}
	if len(config.Brokers) != 2 || config.ProducerType != "async" {
		t.Errorf("unexpected kafka settings: %+v", config)
	}
}

func TestLoadConfigBadSyntax(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tailf.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Errorf("expected syntax error")
	}
}
