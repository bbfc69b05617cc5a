package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
)

type alignmentDataStore struct {
	collection *mongo.Collection
}

// NewAlignmentDataStore returns a MongoDB-based implementation of
// datasets.AlignmentDataStore.
func NewAlignmentDataStore(
	database *mongo.Database,
) (datasets.AlignmentDataStore, error) {
	// Records are keyed by scenario in addition to country and year.
	collection, err :=
		newYearSeriesCollection(database, "alignment-data", "scenario")
	if err != nil {
		return nil, err
	}
	return &alignmentDataStore{
		collection: collection,
	}, nil
}

func (a *alignmentDataStore) Get(
	ctx context.Context,
	code string,
	opts *datasets.YearRangeOptions,
) (datasets.AlignmentDatumList, error) {
	alignment := datasets.AlignmentDatumList{}
	if err := findYearSeries(
		ctx,
		a.collection,
		code,
		opts,
		&alignment.Items,
	); err != nil {
		return alignment, errors.Wrapf(
			err,
			"error finding alignment data for %q",
			code,
		)
	}
	return alignment, nil
}

func (a *alignmentDataStore) Upsert(
	ctx context.Context,
	datum datasets.AlignmentDatum,
) error {
	return errors.Wrapf(
		upsertYearRecord(
			ctx,
			a.collection,
			bson.M{
				"country":  datum.Country,
				"year":     datum.Year,
				"scenario": datum.Scenario,
			},
			datum,
		),
		"error upserting alignment datum for %q/%d",
		datum.Country,
		datum.Year,
	)
}
