package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgBaseName string = "tailf"
	ProgVersion  string = "v1.0.0"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath string = "/etc/tailf.json"

	// Pipeline defaults
	DefaultFlushInterval int = 1    // seconds between position file flushes
	DefaultMaxBatchLines int = 1024 // lines per batch
	DefaultMaxBatches    int = 10   // drain iterations per wake
	QueueCapacityFactor  int = 10   // queue capacity = max_batches * factor

	// Timer cadences and grace periods
	ReapInterval    time.Duration = 60 * time.Second
	ReapGracePeriod time.Duration = 30 * time.Second
	MetricInterval  time.Duration = 60 * time.Second

	// Broker retry policy
	PublishRetryBackoff time.Duration = 1 * time.Second

	// Timeout values
	ShutdownTimeout  time.Duration = 5 * time.Second
	BeatsDialTimeout time.Duration = 3 * time.Second

	// Producer types
	ProducerSync  string = "sync"
	ProducerAsync string = "async"

	// Namespacing Name Components
	NSTailf    string = "Tailf"
	NSTest     string = "Test"
	NSCLI      string = "CLI"
	NSEngine   string = "Engine"
	NSRecovery string = "Recovery"
	NSWatcher  string = "Watcher"
	NSoDir     string = "Dir"
	NSoMod     string = "Mod"
	NSTailer   string = "Tailer"
	NSQueue    string = "Queue"
	NSPublish  string = "Publisher"
	NSWorker   string = "Worker"
	NSReaper   string = "Reaper"
	NSMetric   string = "Metrics"
	NSTimer    string = "Timer"
)
