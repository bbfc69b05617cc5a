package datasets

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/greenorbit/phaseout/apiserver/internal/audit"
	"github.com/greenorbit/phaseout/apiserver/internal/authx"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// YearRangeOptions restricts a year-keyed dataset read to an inclusive range
// of years. Zero values leave the corresponding bound open.
type YearRangeOptions struct {
	From int
	To   int
}

// CountryInfo represents country-level context for the dashboard, keyed by
// ISO 3166-1 alpha-3 country code.
type CountryInfo struct {
	Code                 string  `json:"code" bson:"code"`
	Name                 string  `json:"name" bson:"name"`
	Region               string  `json:"region" bson:"region"`
	IncomeGroup          string  `json:"incomeGroup" bson:"incomeGroup"`
	Population           int64   `json:"population" bson:"population"`
	GDPUSD               float64 `json:"gdpUsd" bson:"gdpUsd"`
	CoalCapacityMW       float64 `json:"coalCapacityMw" bson:"coalCapacityMw"`
	AnnualEmissionsMtCO2 float64 `json:"annualEmissionsMtCo2" bson:"annualEmissionsMtCo2"` // nolint: lll
}

// MarshalJSON amends CountryInfo instances with type metadata.
func (c CountryInfo) MarshalJSON() ([]byte, error) {
	type Alias CountryInfo
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "CountryInfo",
			},
			Alias: (Alias)(c),
		},
	)
}

// CountryInfoList is an ordered and pageable list of CountryInfo records.
type CountryInfoList struct {
	meta.ListMeta `json:"metadata"`
	Items         []CountryInfo `json:"items,omitempty"`
}

// MarshalJSON amends CountryInfoList instances with type metadata.
func (c CountryInfoList) MarshalJSON() ([]byte, error) {
	type Alias CountryInfoList
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "CountryInfoList",
			},
			Alias: (Alias)(c),
		},
	)
}

// CountryInfoService is the specialized interface for managing the
// country-info dataset. Reads are public; upserts are restricted to
// administrators and the data-ingest pipeline.
type CountryInfoService interface {
	// Get retrieves a single country's record by country code.
	Get(context.Context, string) (CountryInfo, error)
	// List returns a CountryInfoList.
	List(context.Context, meta.ListOptions) (CountryInfoList, error)
	// Upsert creates or replaces a single country's record.
	Upsert(context.Context, CountryInfo) error
}

type countryInfoService struct {
	authorize   authx.AuthorizeFn
	store       CountryInfoStore
	auditWriter audit.Writer
}

// NewCountryInfoService returns a specialized interface for managing the
// country-info dataset.
func NewCountryInfoService(
	store CountryInfoStore,
	auditWriter audit.Writer,
) CountryInfoService {
	return &countryInfoService{
		authorize:   authx.Authorize,
		store:       store,
		auditWriter: auditWriter,
	}
}

func (c *countryInfoService) Get(
	ctx context.Context,
	code string,
) (CountryInfo, error) {
	countryInfo, err := c.store.Get(ctx, code)
	if err != nil {
		return countryInfo, errors.Wrapf(
			err,
			"error retrieving country info for %q from store",
			code,
		)
	}
	return countryInfo, nil
}

func (c *countryInfoService) List(
	ctx context.Context,
	opts meta.ListOptions,
) (CountryInfoList, error) {
	if opts.Limit == 0 {
		opts.Limit = 20
	}
	countries, err := c.store.List(ctx, opts)
	if err != nil {
		return countries, errors.Wrap(
			err,
			"error retrieving country info from store",
		)
	}
	return countries, nil
}

func (c *countryInfoService) Upsert(
	ctx context.Context,
	countryInfo CountryInfo,
) error {
	if err := c.authorize(
		ctx,
		authx.RoleAdmin,
		authx.RoleIngest,
	); err != nil {
		return err
	}

	if err := c.store.Upsert(ctx, countryInfo); err != nil {
		return errors.Wrapf(
			err,
			"error storing country info for %q",
			countryInfo.Code,
		)
	}
	c.auditWriter.Record(
		ctx,
		audit.DatasetUpserted,
		"country-info/"+countryInfo.Code,
	)
	return nil
}

// CountryInfoStore is an interface for components that can manage persistence
// of the country-info dataset.
type CountryInfoStore interface {
	Get(context.Context, string) (CountryInfo, error)
	List(context.Context, meta.ListOptions) (CountryInfoList, error)
	Upsert(context.Context, CountryInfo) error
}
