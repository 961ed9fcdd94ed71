package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"tailf/internal/engine"
	"tailf/internal/global"
	"tailf/internal/logctx"
)

// Run the tailing daemon until signalled or failed
func RunMode(ctx context.Context, cliOpts *global.CommandSet, commandname string, args []string) {
	var configPath string
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	requestedLogLevel := SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	commandFlags.Parse(args[0:])

	if configPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --config is required\n")
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}

	global.Verbosity = VerbosityForLevel(*requestedLogLevel)
	logctx.SetLogLevel(ctx, global.Verbosity)

	jsonCfg, err := engine.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	engineConfig, err := engine.NewEngineConf(jsonCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	eng := engine.NewEngine(engineConfig)
	err = eng.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting engine: %v\n", err)
		os.Exit(1)
	}

	eng.Run()

	// Cancellation from inside the engine means a permanent failure;
	// signal-driven exits never reach this point
	eng.Shutdown()
	if eng.Failed() {
		os.Exit(1)
	}
}
