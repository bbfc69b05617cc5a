package mongodb

import (
	"context"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	connectTimeout = 10 * time.Second

	// createIndexTimeout bounds index creation at store construction.
	createIndexTimeout = 5 * time.Second
)

type config struct {
	ConnectionString string `envconfig:"MONGODB_CONNECTION_STRING" required:"true"` // nolint: lll
	DatabaseName     string `envconfig:"MONGODB_DATABASE" required:"true"`
}

// Database returns a handle to the MongoDB database specified by the
// environment.
func Database() (*mongo.Database, error) {
	c := config{}
	if err := envconfig.Process("", &c); err != nil {
		return nil, errors.Wrap(
			err,
			"error getting database configuration from environment",
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	client, err := mongo.Connect(
		ctx,
		options.Client().
			ApplyURI(c.ConnectionString).
			SetWriteConcern(writeconcern.New(writeconcern.WMajority())),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to database")
	}
	return client.Database(c.DatabaseName), nil
}
