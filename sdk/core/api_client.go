package core

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/greenorbit/phaseout/sdk/internal/restmachinery"
	"github.com/greenorbit/phaseout/sdk/meta"
)

// TokenFn supplies the bearer token to present with requests that require
// one. Dataset reads are public, so only upserts consult it.
type TokenFn func() string

// YearRangeOptions restricts a year-keyed dataset read to an inclusive range
// of years. Zero values leave the corresponding bound open.
type YearRangeOptions struct {
	From int
	To   int
}

// APIClient is the root of a tree of specialized clients for the dashboard's
// data API.
type APIClient interface {
	// Countries returns a specialized client for the country-info dataset.
	Countries() CountriesClient
	// Costs returns a specialized client for the cost-variables dataset.
	Costs() CostsClient
	// Benefits returns a specialized client for the benefit-variables dataset.
	Benefits() BenefitsClient
	// Alignment returns a specialized client for the alignment dataset.
	Alignment() AlignmentClient
	// Finance returns a specialized client for the climate-finance dataset.
	Finance() FinanceClient
}

type apiClient struct {
	countriesClient CountriesClient
	costsClient     CostsClient
	benefitsClient  BenefitsClient
	alignmentClient AlignmentClient
	financeClient   FinanceClient
}

// NewAPIClient returns a data API client whose reads fall back to the bundled
// sample data when the server is unreachable or has no record for a country.
func NewAPIClient(
	apiAddress string,
	tokenFn TokenFn,
	allowInsecure bool,
) APIClient {
	return &apiClient{
		countriesClient: &countriesWithSamples{
			CountriesClient: NewCountriesClient(apiAddress, tokenFn, allowInsecure),
		},
		costsClient: &costsWithSamples{
			CostsClient: NewCostsClient(apiAddress, tokenFn, allowInsecure),
		},
		benefitsClient: &benefitsWithSamples{
			BenefitsClient: NewBenefitsClient(apiAddress, tokenFn, allowInsecure),
		},
		alignmentClient: &alignmentWithSamples{
			AlignmentClient: NewAlignmentClient(apiAddress, tokenFn, allowInsecure),
		},
		financeClient: &financeWithSamples{
			FinanceClient: NewFinanceClient(apiAddress, tokenFn, allowInsecure),
		},
	}
}

func (a *apiClient) Countries() CountriesClient {
	return a.countriesClient
}

func (a *apiClient) Costs() CostsClient {
	return a.costsClient
}

func (a *apiClient) Benefits() BenefitsClient {
	return a.benefitsClient
}

func (a *apiClient) Alignment() AlignmentClient {
	return a.alignmentClient
}

func (a *apiClient) Finance() FinanceClient {
	return a.financeClient
}

func newBaseClient(
	apiAddress string,
	allowInsecure bool,
) *restmachinery.BaseClient {
	return &restmachinery.BaseClient{
		APIAddress: apiAddress,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: allowInsecure, // nolint: gosec
				},
			},
		},
	}
}

func bearerAuthHeaders(tokenFn TokenFn) map[string]string {
	if tokenFn == nil {
		return nil
	}
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", tokenFn()),
	}
}

func listQueryParams(opts meta.ListOptions) map[string]string {
	queryParams := map[string]string{}
	if opts.Continue != "" {
		queryParams["continue"] = opts.Continue
	}
	if opts.Limit != 0 {
		queryParams["limit"] = fmt.Sprintf("%d", opts.Limit)
	}
	return queryParams
}

func yearRangeQueryParams(opts *YearRangeOptions) map[string]string {
	if opts == nil {
		return nil
	}
	queryParams := map[string]string{}
	if opts.From != 0 {
		queryParams["from"] = fmt.Sprintf("%d", opts.From)
	}
	if opts.To != 0 {
		queryParams["to"] = fmt.Sprintf("%d", opts.To)
	}
	return queryParams
}
