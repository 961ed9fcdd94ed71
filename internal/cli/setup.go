package cli

import (
	"flag"
	"fmt"
	"os"
	"tailf/internal/global"
	"tailf/internal/install"
)

// Setup/installation options
func SetupMode(cliOpts *global.CommandSet, commandname string, args []string) {
	var newConfTemplate bool
	var templateConfPath string

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	commandFlags.StringVar(&templateConfPath, "c", global.DefaultConfigPath, "Path to template config file")
	commandFlags.StringVar(&templateConfPath, "config", global.DefaultConfigPath, "Path to template config file")
	commandFlags.BoolVar(&newConfTemplate, "config-template", false, "Create new template config (using --config argument)")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])

	if !newConfTemplate {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}

	err := install.CreateTemplateConfig(templateConfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
