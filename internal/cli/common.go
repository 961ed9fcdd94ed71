package cli

import (
	"flag"
	"tailf/internal/global"
)

// Log level names accepted on the command line, mapped onto the verbosity scale
func SetGlobalArguments(fs *flag.FlagSet) (requestedLogLevel *string) {
	requestedLogLevel = fs.String("log-level", "info", "Logging detail <debug|info|warn|error|fatal|unknown>")
	return
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", "", "Path to the configuration file (required)")
	fs.StringVar(configPath, "config", "", "Path to the configuration file (required)")
}

// Translate a named log level into a logger verbosity
func VerbosityForLevel(levelName string) (verbosity int) {
	switch levelName {
	case "debug":
		verbosity = global.VerbosityDebug
	case "info":
		verbosity = global.VerbosityStandard
	case "warn":
		verbosity = global.VerbosityStandard
	case "error", "fatal", "unknown":
		verbosity = global.VerbosityNone
	default:
		verbosity = global.VerbosityStandard
	}
	return
}
