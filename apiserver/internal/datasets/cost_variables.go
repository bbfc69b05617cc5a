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

// CostVariables represents one country-year of phase-out cost estimates, in
// current US dollars.
type CostVariables struct {
	Country             string  `json:"country" bson:"country"`
	Year                int     `json:"year" bson:"year"`
	OpportunityCostUSD  float64 `json:"opportunityCostUsd" bson:"opportunityCostUsd"`   // nolint: lll
	DecommissionUSD     float64 `json:"decommissionUsd" bson:"decommissionUsd"`         // nolint: lll
	WorkerTransitionUSD float64 `json:"workerTransitionUsd" bson:"workerTransitionUsd"` // nolint: lll
	TotalUSD            float64 `json:"totalUsd" bson:"totalUsd"`
}

// MarshalJSON amends CostVariables instances with type metadata.
func (c CostVariables) MarshalJSON() ([]byte, error) {
	type Alias CostVariables
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "CostVariables",
			},
			Alias: (Alias)(c),
		},
	)
}

// CostVariablesList is an ordered list of CostVariables records.
type CostVariablesList struct {
	meta.ListMeta `json:"metadata"`
	Items         []CostVariables `json:"items,omitempty"`
}

// MarshalJSON amends CostVariablesList instances with type metadata.
func (c CostVariablesList) MarshalJSON() ([]byte, error) {
	type Alias CostVariablesList
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "CostVariablesList",
			},
			Alias: (Alias)(c),
		},
	)
}

// CostVariablesService is the specialized interface for managing the
// cost-variables dataset.
type CostVariablesService interface {
	// Get retrieves a country's cost estimates, optionally restricted to a
	// year range.
	Get(context.Context, string, *YearRangeOptions) (CostVariablesList, error)
	// Upsert creates or replaces one country-year of cost estimates.
	Upsert(context.Context, CostVariables) error
}

type costVariablesService struct {
	authorize   authx.AuthorizeFn
	store       CostVariablesStore
	auditWriter audit.Writer
}

// NewCostVariablesService returns a specialized interface for managing the
// cost-variables dataset.
func NewCostVariablesService(
	store CostVariablesStore,
	auditWriter audit.Writer,
) CostVariablesService {
	return &costVariablesService{
		authorize:   authx.Authorize,
		store:       store,
		auditWriter: auditWriter,
	}
}

func (c *costVariablesService) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (CostVariablesList, error) {
	costs, err := c.store.Get(ctx, code, opts)
	if err != nil {
		return costs, errors.Wrapf(
			err,
			"error retrieving cost variables for %q from store",
			code,
		)
	}
	return costs, nil
}

func (c *costVariablesService) Upsert(
	ctx context.Context,
	costs CostVariables,
) error {
	if err := c.authorize(
		ctx,
		authx.RoleAdmin,
		authx.RoleIngest,
	); err != nil {
		return err
	}

	if err := c.store.Upsert(ctx, costs); err != nil {
		return errors.Wrapf(
			err,
			"error storing cost variables for %q/%d",
			costs.Country,
			costs.Year,
		)
	}
	c.auditWriter.Record(
		ctx,
		audit.DatasetUpserted,
		fmt.Sprintf("cost-variables/%s/%d", costs.Country, costs.Year),
	)
	return nil
}

// CostVariablesStore is an interface for components that can manage
// persistence of the cost-variables dataset.
type CostVariablesStore interface {
	Get(context.Context, string, *YearRangeOptions) (CostVariablesList, error)
	Upsert(context.Context, CostVariables) error
}
