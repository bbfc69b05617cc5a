package amqp

import (
	"context"
	"strings"
	"sync"
	"time"

	amqp "github.com/Azure/go-amqp"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/greenorbit/phaseout/apiserver/internal/lib/queue"
	"github.com/greenorbit/phaseout/internal/retries"
)

type queueWriterFactory struct {
	address  string
	dialOpts []amqp.ConnOption
	// Azure Service Bus multiplexes queues by group ID rather than supporting
	// large numbers of distinct queues.
	isAzureServiceBus bool
	amqpClient        *amqp.Client
	amqpClientMu      *sync.Mutex
}

type config struct {
	Address           string `envconfig:"AMQP_ADDRESS"`
	Username          string `envconfig:"AMQP_USERNAME"`
	Password          string `envconfig:"AMQP_PASSWORD"`
	IsAzureServiceBus bool   `envconfig:"AMQP_IS_AZURE_SERVICE_BUS"`
}

// GetQueueWriterFactoryFromEnvironment returns a queue.WriterFactory per
// configuration obtained from the environment. A nil factory and nil error
// are returned when no AMQP address is configured; queue writing is an
// optional capability.
func GetQueueWriterFactoryFromEnvironment() (queue.WriterFactory, error) {
	c := config{}
	if err := envconfig.Process("", &c); err != nil {
		return nil, errors.Wrap(
			err,
			"error getting AMQP configuration from environment",
		)
	}
	if c.Address == "" {
		return nil, nil
	}
	return NewQueueWriterFactory(
		c.Address,
		c.Username,
		c.Password,
		c.IsAzureServiceBus,
	)
}

// NewQueueWriterFactory returns an AMQP-based queue.WriterFactory.
func NewQueueWriterFactory(
	address string,
	username string,
	password string,
	isAzureServiceBus bool,
) (queue.WriterFactory, error) {
	q := &queueWriterFactory{
		address: address,
		dialOpts: []amqp.ConnOption{
			amqp.ConnSASLPlain(username, password),
		},
		isAzureServiceBus: isAzureServiceBus,
		amqpClientMu:      &sync.Mutex{},
	}
	if err := q.connect(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *queueWriterFactory) connect() error {
	return retries.ManageRetries(
		context.Background(),
		"connect",
		10,
		10*time.Second,
		func() (bool, error) {
			if q.amqpClient != nil {
				q.amqpClient.Close()
			}
			var err error
			if q.amqpClient, err = amqp.Dial(q.address, q.dialOpts...); err != nil {
				return true, errors.Wrap(err, "error dialing endpoint")
			}
			return false, nil
		},
	)
}

func (q *queueWriterFactory) NewQueueWriter(
	queueName string,
) (queue.Writer, error) {
	q.amqpClientMu.Lock()
	defer q.amqpClientMu.Unlock()

	// On Azure Service Bus, a queue name of the form "base.group" addresses
	// the "base" queue with messages grouped by "group".
	var groupID string
	if q.isAzureServiceBus {
		queueNameTokens := strings.Split(queueName, ".")
		if len(queueNameTokens) == 2 {
			queueName = queueNameTokens[0]
			groupID = queueNameTokens[1]
		}
	}

	linkOpts := []amqp.LinkOption{
		amqp.LinkTargetAddress(queueName),
	}

	var amqpSession *amqp.Session
	var amqpSender *amqp.Sender
	var err error
	for {
		if amqpSession, err = q.amqpClient.NewSession(); err != nil {
			if err = q.connect(); err != nil {
				return nil, err
			}
			continue
		}
		if amqpSender, err = amqpSession.NewSender(linkOpts...); err != nil {
			amqpSession.Close(context.TODO())
			if err = q.connect(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	return &queueWriter{
		queueName:   queueName,
		groupID:     groupID,
		amqpSession: amqpSession,
		amqpSender:  amqpSender,
	}, nil
}

func (q *queueWriterFactory) Close(context.Context) error {
	if err := q.amqpClient.Close(); err != nil {
		return errors.Wrapf(err, "error closing AMQP client")
	}
	return nil
}
