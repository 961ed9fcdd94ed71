// Kafka broker clients wrapping sarama producers
package broker

import (
	"fmt"
	"tailf/internal/global"

	"github.com/IBM/sarama"
)

type kafkaSyncClient struct {
	producer sarama.SyncProducer
}

type kafkaAsyncClient struct {
	producer sarama.AsyncProducer
}

// Create a Kafka client for the configured producer type
func NewKafka(brokers []string, producerType string) (client Client, err error) {
	config := sarama.NewConfig()
	config.ClientID = global.ProgBaseName
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	switch producerType {
	case global.ProducerSync:
		producer, dialErr := sarama.NewSyncProducer(brokers, config)
		if dialErr != nil {
			err = fmt.Errorf("failed to create sync producer: %v", dialErr)
			return
		}
		client = &kafkaSyncClient{producer: producer}
	case global.ProducerAsync:
		producer, dialErr := sarama.NewAsyncProducer(brokers, config)
		if dialErr != nil {
			err = fmt.Errorf("failed to create async producer: %v", dialErr)
			return
		}
		client = &kafkaAsyncClient{producer: producer}
	default:
		err = fmt.Errorf("unknown producer type '%s'", producerType)
	}
	return
}

func (client *kafkaSyncClient) Publish(topic string, lines []string) (err error) {
	messages := make([]*sarama.ProducerMessage, 0, len(lines))
	for _, line := range lines {
		messages = append(messages, &sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.StringEncoder(line),
		})
	}

	err = client.producer.SendMessages(messages)
	return
}

func (client *kafkaSyncClient) Close() (err error) {
	err = client.producer.Close()
	return
}

func (client *kafkaAsyncClient) Publish(topic string, lines []string) (err error) {
	for _, line := range lines {
		client.producer.Input() <- &sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.StringEncoder(line),
		}
	}

	// Wait for one ack or error per submitted message
	for range lines {
		select {
		case <-client.producer.Successes():
		case produceErr := <-client.producer.Errors():
			if err == nil {
				err = produceErr
			}
		}
	}
	return
}

func (client *kafkaAsyncClient) Close() (err error) {
	err = client.producer.Close()
	return
}
