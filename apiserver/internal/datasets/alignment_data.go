package datasets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/greenorbit/phaseout/apiserver/internal/audit"
	"github.com/greenorbit/phaseout/apiserver/internal/authx"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// AlignmentDatum represents one country-year of temperature-target alignment:
// how much of the country's coal capacity is compatible with a given warming
// scenario.
type AlignmentDatum struct {
	Country              string  `json:"country" bson:"country"`
	Year                 int     `json:"year" bson:"year"`
	Scenario             string  `json:"scenario" bson:"scenario"`
	CapacityMW           float64 `json:"capacityMw" bson:"capacityMw"`
	CompatibleCapacityMW float64 `json:"compatibleCapacityMw" bson:"compatibleCapacityMw"` // nolint: lll
}

// MarshalJSON amends AlignmentDatum instances with type metadata.
func (a AlignmentDatum) MarshalJSON() ([]byte, error) {
	type Alias AlignmentDatum
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "AlignmentDatum",
			},
			Alias: (Alias)(a),
		},
	)
}

// AlignmentDatumList is an ordered list of AlignmentDatum records.
type AlignmentDatumList struct {
	meta.ListMeta `json:"metadata"`
	Items         []AlignmentDatum `json:"items,omitempty"`
}

// MarshalJSON amends AlignmentDatumList instances with type metadata.
func (a AlignmentDatumList) MarshalJSON() ([]byte, error) {
	type Alias AlignmentDatumList
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "AlignmentDatumList",
			},
			Alias: (Alias)(a),
		},
	)
}

// AlignmentDataService is the specialized interface for managing the
// alignment dataset.
type AlignmentDataService interface {
	// Get retrieves a country's alignment data, optionally restricted to a
	// year range.
	Get(context.Context, string, *YearRangeOptions) (AlignmentDatumList, error)
	// Upsert creates or replaces one country-year-scenario alignment datum.
	Upsert(context.Context, AlignmentDatum) error
}

type alignmentDataService struct {
	authorize   authx.AuthorizeFn
	store       AlignmentDataStore
	auditWriter audit.Writer
}

// NewAlignmentDataService returns a specialized interface for managing the
// alignment dataset.
func NewAlignmentDataService(
	store AlignmentDataStore,
	auditWriter audit.Writer,
) AlignmentDataService {
	return &alignmentDataService{
		authorize:   authx.Authorize,
		store:       store,
		auditWriter: auditWriter,
	}
}

func (a *alignmentDataService) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (AlignmentDatumList, error) {
	alignment, err := a.store.Get(ctx, code, opts)
	if err != nil {
		return alignment, errors.Wrapf(
			err,
			"error retrieving alignment data for %q from store",
			code,
		)
	}
	return alignment, nil
}

func (a *alignmentDataService) Upsert(
	ctx context.Context,
	datum AlignmentDatum,
) error {
	if err := a.authorize(
		ctx,
		authx.RoleAdmin,
		authx.RoleIngest,
	); err != nil {
		return err
	}

	if err := a.store.Upsert(ctx, datum); err != nil {
		return errors.Wrapf(
			err,
			"error storing alignment datum for %q/%d",
			datum.Country,
			datum.Year,
		)
	}
	a.auditWriter.Record(
		ctx,
		audit.DatasetUpserted,
		fmt.Sprintf("alignment-data/%s/%d", datum.Country, datum.Year),
	)
	return nil
}

// AlignmentDataStore is an interface for components that can manage
// persistence of the alignment dataset.
type AlignmentDataStore interface {
	Get(context.Context, string, *YearRangeOptions) (AlignmentDatumList, error)
	Upsert(context.Context, AlignmentDatum) error
}
