package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
)

type benefitVariablesStore struct {
	collection *mongo.Collection
}

// NewBenefitVariablesStore returns a MongoDB-based implementation of
// datasets.BenefitVariablesStore.
func NewBenefitVariablesStore(
	database *mongo.Database,
) (datasets.BenefitVariablesStore, error) {
	collection, err := newYearSeriesCollection(database, "benefit-variables")
	if err != nil {
		return nil, err
	}
	return &benefitVariablesStore{
		collection: collection,
	}, nil
}

func (b *benefitVariablesStore) Get(
	ctx context.Context,
	code string,
	opts *datasets.YearRangeOptions,
) (datasets.BenefitVariablesList, error) {
	benefits := datasets.BenefitVariablesList{}
	if err := findYearSeries(
		ctx,
		b.collection,
		code,
		opts,
		&benefits.Items,
	); err != nil {
		return benefits, errors.Wrapf(
			err,
			"error finding benefit variables for %q",
			code,
		)
	}
	return benefits, nil
}

func (b *benefitVariablesStore) Upsert(
	ctx context.Context,
	benefits datasets.BenefitVariables,
) error {
	return errors.Wrapf(
		upsertYearRecord(
			ctx,
			b.collection,
			bson.M{
				"country": benefits.Country,
				"year":    benefits.Year,
			},
			benefits,
		),
		"error upserting benefit variables for %q/%d",
		benefits.Country,
		benefits.Year,
	)
}
