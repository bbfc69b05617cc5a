package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/greenorbit/phaseout/sdk/internal/restmachinery"
	"github.com/greenorbit/phaseout/sdk/meta"
)

// BenefitVariables represents one country-year of phase-out benefit
// estimates, in current US dollars except where noted.
type BenefitVariables struct {
	// Country is the ISO 3166-1 alpha-3 code of the country.
	Country string `json:"country"`
	// Year is the year the estimates apply to.
	Year int `json:"year"`
	// AvoidedEmissionsMtCO2 is emissions avoided relative to continued
	// operation, in megatonnes of CO2.
	AvoidedEmissionsMtCO2 float64 `json:"avoidedEmissionsMtCo2"`
	// AvoidedDamagesUSD is the value of avoided climate damages, priced at the
	// social cost of carbon.
	AvoidedDamagesUSD float64 `json:"avoidedDamagesUsd"`
	// HealthBenefitUSD is the value of avoided local air-pollution harm.
	HealthBenefitUSD float64 `json:"healthBenefitUsd"`
	// TotalUSD is the sum of the component benefits.
	TotalUSD float64 `json:"totalUsd"`
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

// BenefitsClient is the specialized client for the benefit-variables dataset.
type BenefitsClient interface {
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

type benefitsClient struct {
	*restmachinery.BaseClient
	tokenFn TokenFn
}

// NewBenefitsClient returns a specialized client for the benefit-variables
// dataset.
func NewBenefitsClient(
	apiAddress string,
	tokenFn TokenFn,
	allowInsecure bool,
) BenefitsClient {
	return &benefitsClient{
		BaseClient: newBaseClient(apiAddress, allowInsecure),
		tokenFn:    tokenFn,
	}
}

func (b *benefitsClient) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (BenefitVariablesList, error) {
	benefits := BenefitVariablesList{}
	return benefits, b.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        fmt.Sprintf("v2/benefit-variables/%s", code),
			QueryParams: yearRangeQueryParams(opts),
			SuccessCode: http.StatusOK,
			RespObj:     &benefits,
		},
	)
}

func (b *benefitsClient) Upsert(
	ctx context.Context,
	benefits BenefitVariables,
) error {
	return b.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPut,
			Path: fmt.Sprintf(
				"v2/benefit-variables/%s/%d",
				benefits.Country,
				benefits.Year,
			),
			AuthHeaders: bearerAuthHeaders(b.tokenFn),
			ReqBodyObj:  benefits,
			SuccessCode: http.StatusOK,
		},
	)
}
