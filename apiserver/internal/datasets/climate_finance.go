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

// ClimateFinanceFlow represents one country-year of international climate
// finance, in current US dollars.
type ClimateFinanceFlow struct {
	Country      string  `json:"country" bson:"country"`
	Year         int     `json:"year" bson:"year"`
	Instrument   string  `json:"instrument" bson:"instrument"`
	CommittedUSD float64 `json:"committedUsd" bson:"committedUsd"`
	DisbursedUSD float64 `json:"disbursedUsd" bson:"disbursedUsd"`
}

// MarshalJSON amends ClimateFinanceFlow instances with type metadata.
func (c ClimateFinanceFlow) MarshalJSON() ([]byte, error) {
	type Alias ClimateFinanceFlow
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "ClimateFinanceFlow",
			},
			Alias: (Alias)(c),
		},
	)
}

// ClimateFinanceFlowList is an ordered list of ClimateFinanceFlow records.
type ClimateFinanceFlowList struct {
	meta.ListMeta `json:"metadata"`
	Items         []ClimateFinanceFlow `json:"items,omitempty"`
}

// MarshalJSON amends ClimateFinanceFlowList instances with type metadata.
func (c ClimateFinanceFlowList) MarshalJSON() ([]byte, error) {
	type Alias ClimateFinanceFlowList
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "ClimateFinanceFlowList",
			},
			Alias: (Alias)(c),
		},
	)
}

// ClimateFinanceService is the specialized interface for managing the
// climate-finance dataset.
type ClimateFinanceService interface {
	// Get retrieves a country's climate-finance flows, optionally restricted
	// to a year range.
	Get(
		context.Context,
		string,
		*YearRangeOptions,
	) (ClimateFinanceFlowList, error)
	// Upsert creates or replaces one country-year-instrument flow record.
	Upsert(context.Context, ClimateFinanceFlow) error
}

type climateFinanceService struct {
	authorize   authx.AuthorizeFn
	store       ClimateFinanceStore
	auditWriter audit.Writer
}

// NewClimateFinanceService returns a specialized interface for managing the
// climate-finance dataset.
func NewClimateFinanceService(
	store ClimateFinanceStore,
	auditWriter audit.Writer,
) ClimateFinanceService {
	return &climateFinanceService{
		authorize:   authx.Authorize,
		store:       store,
		auditWriter: auditWriter,
	}
}

func (c *climateFinanceService) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (ClimateFinanceFlowList, error) {
	flows, err := c.store.Get(ctx, code, opts)
	if err != nil {
		return flows, errors.Wrapf(
			err,
			"error retrieving climate finance for %q from store",
			code,
		)
	}
	return flows, nil
}

func (c *climateFinanceService) Upsert(
	ctx context.Context,
	flow ClimateFinanceFlow,
) error {
	if err := c.authorize(
		ctx,
		authx.RoleAdmin,
		authx.RoleIngest,
	); err != nil {
		return err
	}

	if err := c.store.Upsert(ctx, flow); err != nil {
		return errors.Wrapf(
			err,
			"error storing climate finance flow for %q/%d",
			flow.Country,
			flow.Year,
		)
	}
	c.auditWriter.Record(
		ctx,
		audit.DatasetUpserted,
		fmt.Sprintf("climate-finance/%s/%d", flow.Country, flow.Year),
	)
	return nil
}

// ClimateFinanceStore is an interface for components that can manage
// persistence of the climate-finance dataset.
type ClimateFinanceStore interface {
	Get(
		context.Context,
		string,
		*YearRangeOptions,
	) (ClimateFinanceFlowList, error)
	Upsert(context.Context, ClimateFinanceFlow) error
}
