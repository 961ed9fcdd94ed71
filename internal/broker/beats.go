// Beats (lumberjack) broker client
package broker

import (
	"fmt"
	"tailf/internal/global"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

type beatsClient struct {
	sink *lumberjack.SyncClient
}

// Dial a lumberjack v2 endpoint
func NewBeats(endpoint string) (client Client, err error) {
	compression := lumberjack.CompressionLevel(0)
	timeout := lumberjack.Timeout(global.BeatsDialTimeout)

	sink, dialErr := lumberjack.SyncDial(endpoint, compression, timeout)
	if dialErr != nil {
		err = fmt.Errorf("failed connection to beats server: %w", dialErr)
		return
	}

	client = &beatsClient{sink: sink}
	return
}

func (client *beatsClient) Publish(topic string, lines []string) (err error) {
	events := make([]interface{}, 0, len(lines))
	for _, line := range lines {
		fields := map[string]interface{}{
			// Minimum required fields
			"@timestamp": time.Now().UTC().Format(time.RFC3339),
			"message":    line,

			"topic": topic,
			"agent": map[string]interface{}{
				"program": global.ProgBaseName,
				"version": global.ProgVersion,
				"type":    "filebeat",
			},
		}
		events = append(events, fields)
	}

	_, err = client.sink.Send(events)
	return
}

func (client *beatsClient) Close() (err error) {
	if client.sink != nil {
		err = client.sink.Close()
	}
	return
}
