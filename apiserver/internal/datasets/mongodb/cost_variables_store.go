package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
)

type costVariablesStore struct {
	collection *mongo.Collection
}

// NewCostVariablesStore returns a MongoDB-based implementation of
// datasets.CostVariablesStore.
func NewCostVariablesStore(
	database *mongo.Database,
) (datasets.CostVariablesStore, error) {
	collection, err := newYearSeriesCollection(database, "cost-variables")
	if err != nil {
		return nil, err
	}
	return &costVariablesStore{
		collection: collection,
	}, nil
}

func (c *costVariablesStore) Get(
	ctx context.Context,
	code string,
	opts *datasets.YearRangeOptions,
) (datasets.CostVariablesList, error) {
	costs := datasets.CostVariablesList{}
	if err := findYearSeries(
		ctx,
		c.collection,
		code,
		opts,
		&costs.Items,
	); err != nil {
		return costs, errors.Wrapf(
			err,
			"error finding cost variables for %q",
			code,
		)
	}
	return costs, nil
}

func (c *costVariablesStore) Upsert(
	ctx context.Context,
	costs datasets.CostVariables,
) error {
	return errors.Wrapf(
		upsertYearRecord(
			ctx,
			c.collection,
			bson.M{
				"country": costs.Country,
				"year":    costs.Year,
			},
			costs,
		),
		"error upserting cost variables for %q/%d",
		costs.Country,
		costs.Year,
	)
}
