package datasets

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/greenorbit/phaseout/apiserver/internal/audit"
	"github.com/greenorbit/phaseout/apiserver/internal/authx"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

type fakeCostVariablesStore struct {
	GetFn    func(context.Context, string, *YearRangeOptions) (CostVariablesList, error) // nolint: lll
	UpsertFn func(context.Context, CostVariables) error
}

func (f *fakeCostVariablesStore) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (CostVariablesList, error) {
	return f.GetFn(ctx, code, opts)
}

func (f *fakeCostVariablesStore) Upsert(
	ctx context.Context,
	costs CostVariables,
) error {
	return f.UpsertFn(ctx, costs)
}

type fakeAuditWriter struct {
	events []string
}

func (f *fakeAuditWriter) Record(
	_ context.Context,
	kind audit.Kind,
	subject string,
) {
	f.events = append(f.events, string(kind)+" "+subject)
}

func TestCostVariablesServiceGet(t *testing.T) {
	service := &costVariablesService{
		store: &fakeCostVariablesStore{
			GetFn: func(
				_ context.Context,
				code string,
				opts *YearRangeOptions,
			) (CostVariablesList, error) {
				require.Equal(t, "IDN", code)
				require.Equal(t, 2030, opts.From)
				return CostVariablesList{
					Items: []CostVariables{
						{
							Country:  "IDN",
							Year:     2030,
							TotalUSD: 1e9,
						},
					},
				}, nil
			},
		},
	}
	costs, err := service.Get(
		context.Background(),
		"IDN",
		&YearRangeOptions{From: 2030},
	)
	require.NoError(t, err)
	require.Len(t, costs.Items, 1)
	require.Equal(t, 2030, costs.Items[0].Year)
}

func TestCostVariablesServiceGetWithStoreError(t *testing.T) {
	service := &costVariablesService{
		store: &fakeCostVariablesStore{
			GetFn: func(
				context.Context,
				string,
				*YearRangeOptions,
			) (CostVariablesList, error) {
				return CostVariablesList{}, errors.New("the database is on fire")
			},
		},
	}
	_, err := service.Get(context.Background(), "IDN", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "on fire")
}

func TestCostVariablesServiceUpsertUnauthorized(t *testing.T) {
	upsertCalled := false
	service := &costVariablesService{
		authorize: authx.Authorize,
		store: &fakeCostVariablesStore{
			UpsertFn: func(context.Context, CostVariables) error {
				upsertCalled = true
				return nil
			},
		},
		auditWriter: audit.NewNopWriter(),
	}
	// An ordinary verified user must not be able to write datasets.
	ctx := authx.ContextWithPrincipal(
		context.Background(),
		&authx.Subject{
			ID: "e9f1d40c-6a52-4e9b-8d3f-1b7c5a2e8f90",
			Profile: &authx.Profile{
				Role:     authx.RoleUser,
				Verified: true,
			},
		},
	)
	err := service.Upsert(ctx, CostVariables{Country: "IDN", Year: 2030})
	require.Error(t, err)
	require.IsType(t, &meta.ErrAuthorization{}, err)
	require.False(t, upsertCalled)
}

func TestCostVariablesServiceUpsert(t *testing.T) {
	var stored CostVariables
	auditWriter := &fakeAuditWriter{}
	service := &costVariablesService{
		authorize: authx.Authorize,
		store: &fakeCostVariablesStore{
			UpsertFn: func(_ context.Context, costs CostVariables) error {
				stored = costs
				return nil
			},
		},
		auditWriter: auditWriter,
	}
	ctx := authx.ContextWithPrincipal(
		context.Background(),
		authx.GetIngester(),
	)
	err := service.Upsert(
		ctx,
		CostVariables{
			Country:  "IDN",
			Year:     2030,
			TotalUSD: 1e9,
		},
	)
	require.NoError(t, err)
	require.Equal(t, "IDN", stored.Country)
	require.Len(t, auditWriter.events, 1)
	require.Equal(t, "dataset:upserted cost-variables/IDN/2030", auditWriter.events[0]) // nolint: lll
}
