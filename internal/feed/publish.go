package feed

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rotisserie/eris"
)

// Publisher forwards raw snapshots to other consumers.
type Publisher interface {
	Publish(data []byte) error
	Close()
}

// NATSPublisher publishes snapshots on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// ConnectNATS connects to the NATS server at url.
func ConnectNATS(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("skylog-capture"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "feed: connect nats %s", url)
	}
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// Publish sends data and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(data []byte) error {
	if err := p.conn.Publish(p.subject, data); err != nil {
		return eris.Wrapf(err, "feed: publish to %s", p.subject)
	}
	if err := p.conn.FlushTimeout(5 * time.Second); err != nil {
		return eris.Wrap(err, "feed: flush nats")
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}
