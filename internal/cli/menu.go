package cli

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"tailf/internal/global"
)

const helpMenuTrailer string = `
Report bugs to: <https://github.com/tailf/tailf/issues>
`

// Full standardized help menu (wraps option printer as well)
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	var curCmdSet *global.CommandSet

	// Find the command in tree
	if command == "" || command == RootCLICommand {
		curCmdSet = rootCmd
	} else if cmd, ok := rootCmd.ChildCommands[command]; ok {
		curCmdSet = cmd
	} else {
		fmt.Printf("Unknown command: %s\n", command)
		curCmdSet = rootCmd
	}

	// Build usage line
	usage := "Usage: " + os.Args[0]
	if curCmdSet != rootCmd {
		usage += " " + curCmdSet.CommandName
	} else if len(curCmdSet.ChildCommands) > 0 {
		usage += " [command]"
	}
	usage += " [options]..."
	fmt.Printf("%s\n", usage)

	if curCmdSet.FullDescription != "" {
		fmt.Printf("%s\n", curCmdSet.FullDescription)
	}

	// Subcommand summary, sorted for stable output
	if len(curCmdSet.ChildCommands) > 0 {
		fmt.Printf("\nCommands:\n")

		names := make([]string, 0, len(curCmdSet.ChildCommands))
		for name := range curCmdSet.ChildCommands {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("  %-12s %s\n", name, curCmdSet.ChildCommands[name].Description)
		}
	}

	// Registered flags for the current command
	fmt.Printf("\nOptions:\n")
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Printf("  -%-12s %s\n", f.Name, f.Usage)
	})

	fmt.Print(helpMenuTrailer)
}
