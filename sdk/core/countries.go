package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/greenorbit/phaseout/sdk/internal/restmachinery"
	"github.com/greenorbit/phaseout/sdk/meta"
)

// CountryInfo represents country-level context for the dashboard: the static
// facts every chart and info panel hangs off of. Countries are keyed by their
// ISO 3166-1 alpha-3 code.
type CountryInfo struct {
	// Code is the country's ISO 3166-1 alpha-3 code.
	Code string `json:"code"`
	// Name is the country's short English name.
	Name string `json:"name"`
	// Region is the World Bank region the country belongs to.
	Region string `json:"region"`
	// IncomeGroup is the World Bank income classification.
	IncomeGroup string `json:"incomeGroup"`
	// Population is the most recent population estimate.
	Population int64 `json:"population"`
	// GDPUSD is the most recent GDP estimate in current US dollars.
	GDPUSD float64 `json:"gdpUsd"`
	// CoalCapacityMW is the operating coal power capacity in megawatts.
	CoalCapacityMW float64 `json:"coalCapacityMw"`
	// AnnualEmissionsMtCO2 is annual power-sector emissions in megatonnes of
	// CO2.
	AnnualEmissionsMtCO2 float64 `json:"annualEmissionsMtCo2"`
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

// CountriesClient is the specialized client for the country-info dataset.
// Reads are public; upserts require a bearer token with upsert permission.
type CountriesClient interface {
	// Get retrieves a single country's record by country code.
	Get(context.Context, string) (CountryInfo, error)
	// List returns a CountryInfoList.
	List(context.Context, meta.ListOptions) (CountryInfoList, error)
	// Upsert creates or replaces a single country's record.
	Upsert(context.Context, CountryInfo) error
}

type countriesClient struct {
	*restmachinery.BaseClient
	tokenFn TokenFn
}

// NewCountriesClient returns a specialized client for the country-info
// dataset.
func NewCountriesClient(
	apiAddress string,
	tokenFn TokenFn,
	allowInsecure bool,
) CountriesClient {
	return &countriesClient{
		BaseClient: newBaseClient(apiAddress, allowInsecure),
		tokenFn:    tokenFn,
	}
}

func (c *countriesClient) Get(
	ctx context.Context,
	code string,
) (CountryInfo, error) {
	countryInfo := CountryInfo{}
	return countryInfo, c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        fmt.Sprintf("v2/country-info/%s", code),
			SuccessCode: http.StatusOK,
			RespObj:     &countryInfo,
		},
	)
}

func (c *countriesClient) List(
	ctx context.Context,
	opts meta.ListOptions,
) (CountryInfoList, error) {
	countries := CountryInfoList{}
	return countries, c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "v2/country-info",
			QueryParams: listQueryParams(opts),
			SuccessCode: http.StatusOK,
			RespObj:     &countries,
		},
	)
}

func (c *countriesClient) Upsert(
	ctx context.Context,
	countryInfo CountryInfo,
) error {
	return c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPut,
			Path:        fmt.Sprintf("v2/country-info/%s", countryInfo.Code),
			AuthHeaders: bearerAuthHeaders(c.tokenFn),
			ReqBodyObj:  countryInfo,
			SuccessCode: http.StatusOK,
		},
	)
}
