// Generates a starter configuration file
package install

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"tailf/internal/global"

	"golang.org/x/term"
)

// Write a template configuration to the given path. An existing file is
// only overwritten after interactive confirmation.
func CreateTemplateConfig(configFilePath string) (err error) {
	if configFilePath == "" {
		err = fmt.Errorf("no config file path provided")
		return
	}

	// Don't overwrite existing without asking
	_, err = os.Stat(configFilePath)
	if err == nil {
		// No terminal - no overwrite
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Printf("Existing configuration file present, not overwriting\n")
			return
		}

		// File exists, prompt user for confirmation to overwrite
		fmt.Printf("Configuration file already exists at '%s'. Are you SURE you want to overwrite it? (yes/no): ", configFilePath)
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)

		if strings.ToLower(input) != "yes" {
			fmt.Printf("Not overwriting configuration file\n")
			return
		}
	}
	err = nil

	fromBeginning := false
	produce := true
	template := global.Config{
		Tailf: global.TailfConfig{
			Files: []global.FileSpec{
				{
					Topic:       "app-logs",
					Prefix:      "/var/log/app-",
					Suffix:      ".log",
					TimePattern: "%Y-%m-%d",
				},
			},
			PositionFile:  "/var/cache/tailf/positions",
			FlushInterval: global.DefaultFlushInterval,
			MaxBatchLines: global.DefaultMaxBatchLines,
			MaxBatches:    global.DefaultMaxBatches,
			FromBeginning: &fromBeginning,
		},
		Kafka: global.KafkaConfig{
			Brokers:      []string{"localhost:9092"},
			ProducerType: global.ProducerSync,
			Produce:      &produce,
		},
	}

	content, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		err = fmt.Errorf("failed to serialize template config: %v", err)
		return
	}

	err = os.WriteFile(configFilePath, append(content, '\n'), 0644)
	if err != nil {
		err = fmt.Errorf("failed to write template config to '%s': %v", configFilePath, err)
		return
	}

	fmt.Printf("Successfully wrote template configuration to '%s'\n", configFilePath)
	return
}
