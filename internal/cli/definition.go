package cli

import "tailf/internal/global"

const RootCLICommand string = "root"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "File-tailing Kafka shipper (tailf)",
		FullDescription: "  Tails rotating log files and publishes their lines to a message broker",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Running
	root.ChildCommands["run"] = &global.CommandSet{
		CommandName:     "run",
		Description:     "Run Daemon",
		FullDescription: "Tails configured files, batches appended lines, and publishes each batch to its destination topic",
		ChildCommands:   nil,
	}

	// Setup
	root.ChildCommands["configure"] = &global.CommandSet{
		CommandName:     "configure",
		Description:     "Setup Actions",
		FullDescription: "Generate a starter configuration file",
		ChildCommands:   nil,
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
