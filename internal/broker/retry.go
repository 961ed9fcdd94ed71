package broker

import (
	"errors"
	"net"
	"syscall"

	"github.com/IBM/sarama"
)

// Whether a publish failure is transient (metadata unavailable, broker
// unreachable) and worth retrying the same batch
func IsRetryable(err error) (retryable bool) {
	if err == nil {
		return
	}

	// A batched send reports per-message failures; one retryable
	// member marks the whole batch retryable.
	var produceErrs sarama.ProducerErrors
	if errors.As(err, &produceErrs) {
		for _, produceErr := range produceErrs {
			if IsRetryable(produceErr.Err) {
				retryable = true
				return
			}
		}
		return
	}
	var produceErr *sarama.ProducerError
	if errors.As(err, &produceErr) {
		retryable = IsRetryable(produceErr.Err)
		return
	}

	switch {
	case errors.Is(err, sarama.ErrOutOfBrokers),
		errors.Is(err, sarama.ErrLeaderNotAvailable),
		errors.Is(err, sarama.ErrNotLeaderForPartition),
		errors.Is(err, sarama.ErrUnknownTopicOrPartition),
		errors.Is(err, sarama.ErrRequestTimedOut):
		retryable = true
		return
	}

	// Connection-level failures from non-Kafka sinks
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		retryable = true
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		retryable = true
	}
	return
}
