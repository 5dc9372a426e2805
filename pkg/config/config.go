package config

import "time"

// SDK holds runtime settings for the experimentation client. Hosts that do
// not use environment-based configuration can construct the client with
// options directly and skip this package.
type SDK struct {
	// SDKKey identifies the project whose datafile the host fetches.
	SDKKey string `env:"EXPERIMENT_SDK_KEY,required,notEmpty"`

	// EventQueueSize caps the asynchronous event queue.
	EventQueueSize int `env:"EXPERIMENT_EVENT_QUEUE_SIZE" envDefault:"1000"`

	// EventBatchSize is the maximum number of events per delivery batch.
	EventBatchSize int `env:"EXPERIMENT_EVENT_BATCH_SIZE" envDefault:"10"`

	// EventFlushInterval is how long a partial batch may wait before delivery.
	EventFlushInterval time.Duration `env:"EXPERIMENT_EVENT_FLUSH_INTERVAL" envDefault:"30s"`
}
