package batchq

// Hand-off unit between a tailer and the publisher. Lines are complete
// (newline stripped); a partial trailing line never leaves the tailer.
type Batch struct {
	Path   string   // owning file path
	Topic  string   // destination topic
	Lines  []string // ordered complete line payloads
	Offset int64    // file byte offset immediately after the last line
}

// Payload byte size of all lines in the batch
func (batch Batch) Size() (size int) {
	for _, line := range batch.Lines {
		size += len(line)
	}
	return
}

// Bounded FIFO of batches. Producers block on full, the consumer blocks on
// empty; a slow broker therefore exerts backpressure on fast tailers.
type Queue struct {
	Namespace []string
	ch        chan Batch
	Metrics   *MetricStorage
}
