package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// UploadEvent announces an image batch that was published and then stored
// by its route.
type UploadEvent struct {
	Route     string              `json:"route"`
	Assets    map[string][]string `json:"assets"`
	PublicIDs []string            `json:"publicIds"`
	At        time.Time           `json:"at"`
}

// Bus publishes JSON events to NATS.
type Bus struct {
	nc      *nats.Conn
	subject string
}

func Connect(url, subject string) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.Name("storefront"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Bus{nc: nc, subject: subject}, nil
}

func (b *Bus) Close() {
	if b.nc != nil {
		_ = b.nc.Drain()
	}
}

func (b *Bus) PublishUpload(ev UploadEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.nc.Publish(b.subject, data)
}

// Nop drops every event. It is used when NATS_URL is empty.
type Nop struct{}

func (Nop) PublishUpload(UploadEvent) error { return nil }
