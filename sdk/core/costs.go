package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/greenorbit/phaseout/sdk/internal/restmachinery"
	"github.com/greenorbit/phaseout/sdk/meta"
)

// CostVariables represents one country-year of phase-out cost estimates, in
// current US dollars.
type CostVariables struct {
	// Country is the ISO 3166-1 alpha-3 code of the country.
	Country string `json:"country"`
	// Year is the year the estimates apply to.
	Year int `json:"year"`
	// OpportunityCostUSD is forgone generation profit from retiring plants
	// ahead of schedule.
	OpportunityCostUSD float64 `json:"opportunityCostUsd"`
	// DecommissionUSD is the cost of physically retiring plants.
	DecommissionUSD float64 `json:"decommissionUsd"`
	// WorkerTransitionUSD is the cost of compensating and retraining affected
	// workers.
	WorkerTransitionUSD float64 `json:"workerTransitionUsd"`
	// TotalUSD is the sum of the component costs.
	TotalUSD float64 `json:"totalUsd"`
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

// CostsClient is the specialized client for the cost-variables dataset.
type CostsClient interface {
	// Get retrieves a country's cost estimates, optionally restricted to a
	// year range.
	Get(context.Context, string, *YearRangeOptions) (CostVariablesList, error)
	// Upsert creates or replaces one country-year of cost estimates.
	Upsert(context.Context, CostVariables) error
}

type costsClient struct {
	*restmachinery.BaseClient
	tokenFn TokenFn
}

// NewCostsClient returns a specialized client for the cost-variables dataset.
func NewCostsClient(
	apiAddress string,
	tokenFn TokenFn,
	allowInsecure bool,
) CostsClient {
	return &costsClient{
		BaseClient: newBaseClient(apiAddress, allowInsecure),
		tokenFn:    tokenFn,
	}
}

func (c *costsClient) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (CostVariablesList, error) {
	costs := CostVariablesList{}
	return costs, c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        fmt.Sprintf("v2/cost-variables/%s", code),
			QueryParams: yearRangeQueryParams(opts),
			SuccessCode: http.StatusOK,
			RespObj:     &costs,
		},
	)
}

func (c *costsClient) Upsert(
	ctx context.Context,
	costs CostVariables,
) error {
	return c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPut,
			Path: fmt.Sprintf(
				"v2/cost-variables/%s/%d",
				costs.Country,
				costs.Year,
			),
			AuthHeaders: bearerAuthHeaders(c.tokenFn),
			ReqBodyObj:  costs,
			SuccessCode: http.StatusOK,
		},
	)
}
