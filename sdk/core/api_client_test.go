package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenorbit/phaseout/sdk/meta"
)

const testToken = "ingest-token"

func TestCountriesGet(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/v2/country-info/VNM", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(
				w,
				`{"code":"VNM","name":"Vietnam","coalCapacityMw":25300}`,
			)
		}),
	)
	defer server.Close()
	client := NewAPIClient(server.URL, nil, false)
	countryInfo, err := client.Countries().Get(context.Background(), "VNM")
	require.NoError(t, err)
	require.Equal(t, "VNM", countryInfo.Code)
	require.Equal(t, "Vietnam", countryInfo.Name)
	require.Equal(t, 25300.0, countryInfo.CoalCapacityMW)
}

func TestCountriesGetFallsBackToSample(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"type":"NOT FOUND"}`)
		}),
	)
	defer server.Close()
	client := NewAPIClient(server.URL, nil, false)
	countryInfo, err := client.Countries().Get(context.Background(), "DEU")
	require.NoError(t, err)
	require.Equal(t, "DEU", countryInfo.Code)
	require.Equal(t, "Germany", countryInfo.Name)
}

func TestCountriesGetWithoutSampleSurfacesError(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"type":"NOT FOUND"}`)
		}),
	)
	defer server.Close()
	client := NewAPIClient(server.URL, nil, false)
	// No bundled sample exists for this code
	_, err := client.Countries().Get(context.Background(), "XXX")
	require.Error(t, err)
	_, isNotFound := err.(*meta.ErrNotFound)
	require.True(t, isNotFound)
}

func TestCostsGetPassesYearRange(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v2/cost-variables/IDN", r.URL.Path)
			require.Equal(t, "2025", r.URL.Query().Get("from"))
			require.Equal(t, "2040", r.URL.Query().Get("to"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(
				w,
				`{"items":[{"country":"IDN","year":2030,"totalUsd":17700000000}]}`,
			)
		}),
	)
	defer server.Close()
	client := NewAPIClient(server.URL, nil, false)
	costs, err := client.Costs().Get(
		context.Background(),
		"IDN",
		&YearRangeOptions{From: 2025, To: 2040},
	)
	require.NoError(t, err)
	require.Len(t, costs.Items, 1)
	require.Equal(t, 2030, costs.Items[0].Year)
}

func TestFinanceGetFallsBackToSampleWhenServerIsUnreachable(t *testing.T) {
	// Nothing is listening at this address
	client := NewAPIClient("http://127.0.0.1:1", nil, false)
	flows, err := client.Finance().Get(context.Background(), "ZAF", nil)
	require.NoError(t, err)
	require.NotEmpty(t, flows.Items)
	for _, flow := range flows.Items {
		require.Equal(t, "ZAF", flow.Country)
	}
}

func TestAlignmentGetRespectsYearRangeInSampleFallback(t *testing.T) {
	client := NewAPIClient("http://127.0.0.1:1", nil, false)
	alignment, err := client.Alignment().Get(
		context.Background(),
		"DEU",
		&YearRangeOptions{From: 2050},
	)
	// The bundled samples have nothing at or beyond 2050, so the transport
	// error surfaces
	require.Error(t, err)
	require.Empty(t, alignment.Items)
}

func TestBenefitsUpsert(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)
			require.Equal(t, "/v2/benefit-variables/ZAF/2035", r.URL.Path)
			require.Equal(
				t,
				fmt.Sprintf("Bearer %s", testToken),
				r.Header.Get("Authorization"),
			)
			benefits := BenefitVariables{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&benefits))
			require.Equal(t, "ZAF", benefits.Country)
			require.Equal(t, 2035, benefits.Year)
			w.WriteHeader(http.StatusOK)
		}),
	)
	defer server.Close()
	client :=
		NewAPIClient(server.URL, func() string { return testToken }, false)
	err := client.Benefits().Upsert(
		context.Background(),
		BenefitVariables{
			Country:               "ZAF",
			Year:                  2035,
			AvoidedEmissionsMtCO2: 160.1,
		},
	)
	require.NoError(t, err)
}

func TestBenefitsUpsertDoesNotFallBack(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"type":"AUTHORIZATION"}`)
		}),
	)
	defer server.Close()
	client :=
		NewAPIClient(server.URL, func() string { return testToken }, false)
	err := client.Benefits().Upsert(
		context.Background(),
		BenefitVariables{Country: "ZAF", Year: 2035},
	)
	require.Error(t, err)
	_, isAuthz := err.(*meta.ErrAuthorization)
	require.True(t, isAuthz)
}
