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

// BenefitVariables represents one country-year of phase-out benefit
// estimates, in current US dollars except where noted.
type BenefitVariables struct {
	Country               string  `json:"country" bson:"country"`
	Year                  int     `json:"year" bson:"year"`
	AvoidedEmissionsMtCO2 float64 `json:"avoidedEmissionsMtCo2" bson:"avoidedEmissionsMtCo2"` // nolint: lll
	AvoidedDamagesUSD     float64 `json:"avoidedDamagesUsd" bson:"avoidedDamagesUsd"`         // nolint: lll
	HealthBenefitUSD      float64 `json:"healthBenefitUsd" bson:"healthBenefitUsd"`           // nolint: lll
	TotalUSD              float64 `json:"totalUsd" bson:"totalUsd"`
}

// MarshalJSON amends BenefitVariables instances with type metadata.
func (b BenefitVariables) MarshalJSON() ([]byte, error) {
	type Alias BenefitVariables
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "BenefitVariables",
			},
			Alias: (Alias)(b),
		},
	)
}

// BenefitVariablesList is an ordered list of BenefitVariables records.
type BenefitVariablesList struct {
	meta.ListMeta `json:"metadata"`
	Items         []BenefitVariables `json:"items,omitempty"`
}

// MarshalJSON amends BenefitVariablesList instances with type metadata.
func (b BenefitVariablesList) MarshalJSON() ([]byte, error) {
	type Alias BenefitVariablesList
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "BenefitVariablesList",
			},
			Alias: (Alias)(b),
		},
	)
}

// BenefitVariablesService is the specialized interface for managing the
// benefit-variables dataset.
type BenefitVariablesService interface {
	// Get retrieves a country's benefit estimates, optionally restricted to a
	// year range.
	Get(
		context.Context,
		string,
		*YearRangeOptions,
	) (BenefitVariablesList, error)
	// Upsert creates or replaces one country-year of benefit estimates.
	Upsert(context.Context, BenefitVariables) error
}

type benefitVariablesService struct {
	authorize   authx.AuthorizeFn
	store       BenefitVariablesStore
	auditWriter audit.Writer
}

// NewBenefitVariablesService returns a specialized interface for managing the
// benefit-variables dataset.
func NewBenefitVariablesService(
	store BenefitVariablesStore,
	auditWriter audit.Writer,
) BenefitVariablesService {
	return &benefitVariablesService{
		authorize:   authx.Authorize,
		store:       store,
		auditWriter: auditWriter,
	}
}

func (b *benefitVariablesService) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (BenefitVariablesList, error) {
	benefits, err := b.store.Get(ctx, code, opts)
	if err != nil {
		return benefits, errors.Wrapf(
			err,
			"error retrieving benefit variables for %q from store",
			code,
		)
	}
	return benefits, nil
}

func (b *benefitVariablesService) Upsert(
	ctx context.Context,
	benefits BenefitVariables,
) error {
	if err := b.authorize(
		ctx,
		authx.RoleAdmin,
		authx.RoleIngest,
	); err != nil {
		return err
	}

	if err := b.store.Upsert(ctx, benefits); err != nil {
		return errors.Wrapf(
			err,
			"error storing benefit variables for %q/%d",
			benefits.Country,
			benefits.Year,
		)
	}
	b.auditWriter.Record(
		ctx,
		audit.DatasetUpserted,
		fmt.Sprintf("benefit-variables/%s/%d", benefits.Country, benefits.Year),
	)
	return nil
}

// BenefitVariablesStore is an interface for components that can manage
// persistence of the benefit-variables dataset.
type BenefitVariablesStore interface {
	Get(
		context.Context,
		string,
		*YearRangeOptions,
	) (BenefitVariablesList, error)
	Upsert(context.Context, BenefitVariables) error
}
