package jetstream

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/logger"
)

// DefaultSubjectPrefix prefixes every event subject, e.g. ugc.bookmarks.updated
const DefaultSubjectPrefix = "ugc"

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	// ConsumerName identifies this instance's consumer; it is removed by the server after ConsumerInactiveThreshold
	ConsumerName              string
	ConsumerInactiveThreshold time.Duration
}

func (c Config) subjectPrefix() string {
	if c.SubjectPrefix == "" {
		return DefaultSubjectPrefix
	}
	return c.SubjectPrefix
}

// subject builds the NATS subject of an event type
func (c Config) subject(eventType domain.EventType) string {
	return fmt.Sprintf("%s.%s", c.subjectPrefix(), eventType)
}

// wildcard matches every event subject of the stream
func (c Config) wildcard() string {
	return c.subjectPrefix() + ".>"
}

// connectionOptions returns the reconnect and logging options shared by publisher and subscriber
func (c Config) connectionOptions() []nats.Option {
	return []nats.Option{
		nats.Name(c.ConnectionName),
		nats.MaxReconnects(c.MaxReconnects),
		nats.ReconnectWait(c.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}
