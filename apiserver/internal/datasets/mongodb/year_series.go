package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
)

const createIndexTimeout = 5 * time.Second

// newYearSeriesCollection returns the named collection with a unique index
// over the country/year key shared by all year-keyed datasets.
func newYearSeriesCollection(
	database *mongo.Database,
	name string,
	extraKeys ...string,
) (*mongo.Collection, error) {
	ctx, cancel :=
		context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()
	unique := true
	keys := bson.D{
		{Key: "country", Value: 1},
		{Key: "year", Value: 1},
	}
	for _, key := range extraKeys {
		keys = append(keys, bson.E{Key: key, Value: 1})
	}
	collection := database.Collection(name)
	if _, err := collection.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: keys,
			Options: &options.IndexOptions{
				Unique: &unique,
			},
		},
	); err != nil {
		return nil, errors.Wrapf(
			err,
			"error adding indexes to %s collection",
			name,
		)
	}
	return collection, nil
}

// yearSeriesCriteria builds find criteria for a country's records within a
// year range.
func yearSeriesCriteria(
	code string,
	opts *datasets.YearRangeOptions,
) bson.M {
	criteria := bson.M{"country": code}
	if opts != nil {
		yearCriteria := bson.M{}
		if opts.From != 0 {
			yearCriteria["$gte"] = opts.From
		}
		if opts.To != 0 {
			yearCriteria["$lte"] = opts.To
		}
		if len(yearCriteria) > 0 {
			criteria["year"] = yearCriteria
		}
	}
	return criteria
}

// findYearSeries finds a country's records within a year range, sorted by
// year, and decodes them into items, which must be a pointer to a slice.
func findYearSeries(
	ctx context.Context,
	collection *mongo.Collection,
	code string,
	opts *datasets.YearRangeOptions,
	items interface{},
) error {
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"year": 1})
	cur, err := collection.Find(
		ctx,
		yearSeriesCriteria(code, opts),
		findOptions,
	)
	if err != nil {
		return errors.Wrap(err, "error finding records")
	}
	if err := cur.All(ctx, items); err != nil {
		return errors.Wrap(err, "error decoding records")
	}
	return nil
}

// upsertYearRecord replaces (or creates) the record identified by the
// specified criteria.
func upsertYearRecord(
	ctx context.Context,
	collection *mongo.Collection,
	criteria bson.M,
	record interface{},
) error {
	upsert := true
	if _, err := collection.ReplaceOne(
		ctx,
		criteria,
		record,
		&options.ReplaceOptions{
			Upsert: &upsert,
		},
	); err != nil {
		return errors.Wrap(err, "error upserting record")
	}
	return nil
}
