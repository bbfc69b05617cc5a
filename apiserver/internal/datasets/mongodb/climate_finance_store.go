package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
)

type climateFinanceStore struct {
	collection *mongo.Collection
}

// NewClimateFinanceStore returns a MongoDB-based implementation of
// datasets.ClimateFinanceStore.
func NewClimateFinanceStore(
	database *mongo.Database,
) (datasets.ClimateFinanceStore, error) {
	// Records are keyed by instrument in addition to country and year.
	collection, err :=
		newYearSeriesCollection(database, "climate-finance", "instrument")
	if err != nil {
		return nil, err
	}
	return &climateFinanceStore{
		collection: collection,
	}, nil
}

func (c *climateFinanceStore) Get(
	ctx context.Context,
	code string,
	opts *datasets.YearRangeOptions,
) (datasets.ClimateFinanceFlowList, error) {
	flows := datasets.ClimateFinanceFlowList{}
	if err := findYearSeries(
		ctx,
		c.collection,
		code,
		opts,
		&flows.Items,
	); err != nil {
		return flows, errors.Wrapf(
			err,
			"error finding climate finance for %q",
			code,
		)
	}
	return flows, nil
}

func (c *climateFinanceStore) Upsert(
	ctx context.Context,
	flow datasets.ClimateFinanceFlow,
) error {
	return errors.Wrapf(
		upsertYearRecord(
			ctx,
			c.collection,
			bson.M{
				"country":    flow.Country,
				"year":       flow.Year,
				"instrument": flow.Instrument,
			},
			flow,
		),
		"error upserting climate finance flow for %q/%d",
		flow.Country,
		flow.Year,
	)
}
