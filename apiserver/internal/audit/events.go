package audit

import (
	"context"
	"encoding/json"
	"time"

	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"

	"github.com/greenorbit/phaseout/apiserver/internal/lib/queue"
)

// Kind identifies the category of an audited occurrence.
type Kind string

const (
	// ProfileCreated records provisioning of a new profile.
	ProfileCreated Kind = "profile:created"
	// ProfileLocked records revocation of a profile's access.
	ProfileLocked Kind = "profile:locked"
	// ProfileUnlocked records restoration of a profile's access.
	ProfileUnlocked Kind = "profile:unlocked"
	// ProfileVerified records approval of a profile.
	ProfileVerified Kind = "profile:verified"
	// DatasetUpserted records creation or replacement of a dataset record.
	DatasetUpserted Kind = "dataset:upserted"
)

// Event is a single audited occurrence.
type Event struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Actor   string    `json:"actor"`
	Subject string    `json:"subject"`
	Time    time.Time `json:"time"`
}

// ActorFn derives an audit actor identifier from a request context.
type ActorFn func(context.Context) string

// Writer is an interface for components that can record audit events. Audit
// recording is best effort: implementations log failures and never fail the
// request that triggered the event.
type Writer interface {
	// Record records a single audit event.
	Record(ctx context.Context, kind Kind, subject string)
}

type nopWriter struct{}

// NewNopWriter returns a Writer that discards all events. It is used when no
// audit queue is configured.
func NewNopWriter() Writer {
	return &nopWriter{}
}

func (n *nopWriter) Record(context.Context, Kind, string) {}

type queueBackedWriter struct {
	queueWriter queue.Writer
	actorFn     ActorFn
	logger      *zap.Logger
}

// NewQueueBackedWriter returns a Writer that publishes audit events to the
// "audit.events" queue.
func NewQueueBackedWriter(
	writerFactory queue.WriterFactory,
	actorFn ActorFn,
	logger *zap.Logger,
) (Writer, error) {
	queueWriter, err := writerFactory.NewQueueWriter("audit.events")
	if err != nil {
		return nil, err
	}
	return &queueBackedWriter{
		queueWriter: queueWriter,
		actorFn:     actorFn,
		logger:      logger,
	}, nil
}

func (q *queueBackedWriter) Record(
	ctx context.Context,
	kind Kind,
	subject string,
) {
	event := Event{
		ID:      uuid.NewV4().String(),
		Kind:    kind,
		Subject: subject,
		Time:    time.Now(),
	}
	if q.actorFn != nil {
		event.Actor = q.actorFn(ctx)
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		q.logger.Error("error marshaling audit event", zap.Error(err))
		return
	}
	if err := q.queueWriter.Write(ctx, string(eventBytes)); err != nil {
		q.logger.Warn(
			"error writing audit event",
			zap.String("kind", string(kind)),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
