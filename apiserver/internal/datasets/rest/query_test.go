package rest

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

func TestYearRangeFromRequest(t *testing.T) {
	r := httptest.NewRequest(
		"GET",
		"/v2/cost-variables/IDN?from=2030&to=2050",
		nil,
	)
	opts, err := yearRangeFromRequest(r)
	require.NoError(t, err)
	require.Equal(t, 2030, opts.From)
	require.Equal(t, 2050, opts.To)

	// Both bounds are optional
	r = httptest.NewRequest("GET", "/v2/cost-variables/IDN", nil)
	opts, err = yearRangeFromRequest(r)
	require.NoError(t, err)
	require.Zero(t, opts.From)
	require.Zero(t, opts.To)

	r = httptest.NewRequest("GET", "/v2/cost-variables/IDN?from=soon", nil)
	_, err = yearRangeFromRequest(r)
	require.Error(t, err)
	require.IsType(t, &meta.ErrBadRequest{}, err)
}

func TestYearFromPath(t *testing.T) {
	year, err := yearFromPath("2030")
	require.NoError(t, err)
	require.Equal(t, 2030, year)

	_, err = yearFromPath("twenty-thirty")
	require.Error(t, err)
	require.IsType(t, &meta.ErrBadRequest{}, err)
}
