package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/greenorbit/phaseout/sdk/internal/restmachinery"
	"github.com/greenorbit/phaseout/sdk/meta"
)

// AlignmentDatum represents one country-year of temperature-target alignment:
// how much of the country's coal capacity is compatible with a given warming
// scenario.
type AlignmentDatum struct {
	// Country is the ISO 3166-1 alpha-3 code of the country.
	Country string `json:"country"`
	// Year is the year the datum applies to.
	Year int `json:"year"`
	// Scenario names the warming scenario, e.g. "1.5C" or "2C".
	Scenario string `json:"scenario"`
	// CapacityMW is projected operating coal capacity in megawatts.
	CapacityMW float64 `json:"capacityMw"`
	// CompatibleCapacityMW is the capacity level compatible with the scenario.
	CompatibleCapacityMW float64 `json:"compatibleCapacityMw"`
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

// AlignmentClient is the specialized client for the alignment dataset.
type AlignmentClient interface {
	// Get retrieves a country's alignment data, optionally restricted to a
	// year range.
	Get(context.Context, string, *YearRangeOptions) (AlignmentDatumList, error)
	// Upsert creates or replaces one country-year-scenario alignment datum.
	Upsert(context.Context, AlignmentDatum) error
}

type alignmentClient struct {
	*restmachinery.BaseClient
	tokenFn TokenFn
}

// NewAlignmentClient returns a specialized client for the alignment dataset.
func NewAlignmentClient(
	apiAddress string,
	tokenFn TokenFn,
	allowInsecure bool,
) AlignmentClient {
	return &alignmentClient{
		BaseClient: newBaseClient(apiAddress, allowInsecure),
		tokenFn:    tokenFn,
	}
}

func (a *alignmentClient) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (AlignmentDatumList, error) {
	alignment := AlignmentDatumList{}
	return alignment, a.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        fmt.Sprintf("v2/alignment-data/%s", code),
			QueryParams: yearRangeQueryParams(opts),
			SuccessCode: http.StatusOK,
			RespObj:     &alignment,
		},
	)
}

func (a *alignmentClient) Upsert(
	ctx context.Context,
	datum AlignmentDatum,
) error {
	return a.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPut,
			Path: fmt.Sprintf(
				"v2/alignment-data/%s/%d",
				datum.Country,
				datum.Year,
			),
			AuthHeaders: bearerAuthHeaders(a.tokenFn),
			ReqBodyObj:  datum,
			SuccessCode: http.StatusOK,
		},
	)
}
