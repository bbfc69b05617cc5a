package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/greenorbit/phaseout/sdk/internal/restmachinery"
	"github.com/greenorbit/phaseout/sdk/meta"
)

// ClimateFinanceFlow represents one country-year of international climate
// finance, in current US dollars.
type ClimateFinanceFlow struct {
	// Country is the ISO 3166-1 alpha-3 code of the recipient country.
	Country string `json:"country"`
	// Year is the year the flow applies to.
	Year int `json:"year"`
	// Instrument names the finance instrument: "grant", "loan", or "equity".
	Instrument string `json:"instrument"`
	// CommittedUSD is finance committed during the year.
	CommittedUSD float64 `json:"committedUsd"`
	// DisbursedUSD is finance actually disbursed during the year.
	DisbursedUSD float64 `json:"disbursedUsd"`
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

// FinanceClient is the specialized client for the climate-finance dataset.
type FinanceClient interface {
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

type financeClient struct {
	*restmachinery.BaseClient
	tokenFn TokenFn
}

// NewFinanceClient returns a specialized client for the climate-finance
// dataset.
func NewFinanceClient(
	apiAddress string,
	tokenFn TokenFn,
	allowInsecure bool,
) FinanceClient {
	return &financeClient{
		BaseClient: newBaseClient(apiAddress, allowInsecure),
		tokenFn:    tokenFn,
	}
}

func (f *financeClient) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (ClimateFinanceFlowList, error) {
	flows := ClimateFinanceFlowList{}
	return flows, f.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        fmt.Sprintf("v2/climate-finance/%s", code),
			QueryParams: yearRangeQueryParams(opts),
			SuccessCode: http.StatusOK,
			RespObj:     &flows,
		},
	)
}

func (f *financeClient) Upsert(
	ctx context.Context,
	flow ClimateFinanceFlow,
) error {
	return f.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPut,
			Path: fmt.Sprintf(
				"v2/climate-finance/%s/%d",
				flow.Country,
				flow.Year,
			),
			AuthHeaders: bearerAuthHeaders(f.tokenFn),
			ReqBodyObj:  flow,
			SuccessCode: http.StatusOK,
		},
	)
}
