package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

type countryInfoStore struct {
	collection *mongo.Collection
}

// NewCountryInfoStore returns a MongoDB-based implementation of
// datasets.CountryInfoStore.
func NewCountryInfoStore(
	database *mongo.Database,
) (datasets.CountryInfoStore, error) {
	ctx, cancel :=
		context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()
	unique := true
	collection := database.Collection("country-info")
	if _, err := collection.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.M{
				"code": 1,
			},
			Options: &options.IndexOptions{
				Unique: &unique,
			},
		},
	); err != nil {
		return nil, errors.Wrap(
			err,
			"error adding indexes to country-info collection",
		)
	}
	return &countryInfoStore{
		collection: collection,
	}, nil
}

func (c *countryInfoStore) Get(
	ctx context.Context,
	code string,
) (datasets.CountryInfo, error) {
	countryInfo := datasets.CountryInfo{}
	res := c.collection.FindOne(ctx, bson.M{"code": code})
	if res.Err() == mongo.ErrNoDocuments {
		return countryInfo, &meta.ErrNotFound{
			Type: "CountryInfo",
			ID:   code,
		}
	}
	if res.Err() != nil {
		return countryInfo, errors.Wrapf(
			res.Err(),
			"error finding country info for %q",
			code,
		)
	}
	if err := res.Decode(&countryInfo); err != nil {
		return countryInfo, errors.Wrapf(
			err,
			"error decoding country info for %q",
			code,
		)
	}
	return countryInfo, nil
}

func (c *countryInfoStore) List(
	ctx context.Context,
	opts meta.ListOptions,
) (datasets.CountryInfoList, error) {
	countries := datasets.CountryInfoList{}

	criteria := bson.M{}
	if opts.Continue != "" {
		criteria["code"] = bson.M{"$gt": opts.Continue}
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"code": 1})
	findOptions.SetLimit(opts.Limit)
	cur, err := c.collection.Find(ctx, criteria, findOptions)
	if err != nil {
		return countries, errors.Wrap(err, "error finding country info")
	}
	if err := cur.All(ctx, &countries.Items); err != nil {
		return countries, errors.Wrap(err, "error decoding country info")
	}

	if int64(len(countries.Items)) == opts.Limit {
		continueCode := countries.Items[opts.Limit-1].Code
		criteria["code"] = bson.M{"$gt": continueCode}
		remaining, err := c.collection.CountDocuments(ctx, criteria)
		if err != nil {
			return countries, errors.Wrap(
				err,
				"error counting remaining country info",
			)
		}
		if remaining > 0 {
			countries.Continue = continueCode
			countries.RemainingItemCount = remaining
		}
	}

	return countries, nil
}

func (c *countryInfoStore) Upsert(
	ctx context.Context,
	countryInfo datasets.CountryInfo,
) error {
	upsert := true
	if _, err := c.collection.ReplaceOne(
		ctx,
		bson.M{"code": countryInfo.Code},
		countryInfo,
		&options.ReplaceOptions{
			Upsert: &upsert,
		},
	); err != nil {
		return errors.Wrapf(
			err,
			"error upserting country info for %q",
			countryInfo.Code,
		)
	}
	return nil
}
