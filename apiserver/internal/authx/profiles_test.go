package authx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenorbit/phaseout/apiserver/internal/audit"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

const testProfileID = "e9f1d40c-6a52-4e9b-8d3f-1b7c5a2e8f90"

type fakeProfilesStore struct {
	CreateFn func(context.Context, Profile) error
	GetFn    func(context.Context, string) (Profile, error)
	ListFn   func(
		context.Context,
		ProfilesSelector,
		meta.ListOptions,
	) (ProfileList, error)
	LockFn   func(context.Context, string) error
	UnlockFn func(context.Context, string) error
	VerifyFn func(context.Context, string) error
}

func (f *fakeProfilesStore) Create(ctx context.Context, p Profile) error {
	return f.CreateFn(ctx, p)
}

func (f *fakeProfilesStore) Get(
	ctx context.Context,
	id string,
) (Profile, error) {
	return f.GetFn(ctx, id)
}

func (f *fakeProfilesStore) List(
	ctx context.Context,
	selector ProfilesSelector,
	opts meta.ListOptions,
) (ProfileList, error) {
	return f.ListFn(ctx, selector, opts)
}

func (f *fakeProfilesStore) Lock(ctx context.Context, id string) error {
	return f.LockFn(ctx, id)
}

func (f *fakeProfilesStore) Unlock(ctx context.Context, id string) error {
	return f.UnlockFn(ctx, id)
}

func (f *fakeProfilesStore) Verify(ctx context.Context, id string) error {
	return f.VerifyFn(ctx, id)
}

type recordingAuditWriter struct {
	events []string
}

func (r *recordingAuditWriter) Record(
	_ context.Context,
	kind audit.Kind,
	subject string,
) {
	r.events = append(r.events, string(kind)+" "+subject)
}

func adminContext() context.Context {
	return ContextWithPrincipal(
		context.Background(),
		&Subject{
			ID: "11111111-2222-3333-4444-555555555555",
			Profile: &Profile{
				Role:     RoleAdmin,
				Verified: true,
			},
		},
	)
}

func TestProfilesServiceCreate(t *testing.T) {
	var stored Profile
	auditWriter := &recordingAuditWriter{}
	service := &profilesService{
		authorize: Authorize,
		profilesStore: &fakeProfilesStore{
			CreateFn: func(_ context.Context, profile Profile) error {
				stored = profile
				return nil
			},
		},
		auditWriter: auditWriter,
	}

	profile := Profile{
		Name:  "Greta",
		Email: "greta@coalfreefuture.org",
		Role:  RoleUser,
	}
	profile.ID = testProfileID

	created, err := service.Create(adminContext(), profile)
	require.NoError(t, err)
	require.NotNil(t, created.Created)
	require.Equal(t, testProfileID, stored.ID)
	require.Equal(t, []string{"profile:created " + testProfileID}, auditWriter.events) // nolint: lll
}

func TestProfilesServiceCreateUnauthorized(t *testing.T) {
	createCalled := false
	service := &profilesService{
		authorize: Authorize,
		profilesStore: &fakeProfilesStore{
			CreateFn: func(context.Context, Profile) error {
				createCalled = true
				return nil
			},
		},
		auditWriter: audit.NewNopWriter(),
	}
	ctx := ContextWithPrincipal(
		context.Background(),
		&Subject{
			ID: testProfileID,
			Profile: &Profile{
				Role:     RoleUser,
				Verified: true,
			},
		},
	)
	_, err := service.Create(ctx, Profile{})
	require.Error(t, err)
	require.IsType(t, &meta.ErrAuthorization{}, err)
	require.False(t, createCalled)
}

func TestProfilesServiceGetSelf(t *testing.T) {
	service := &profilesService{
		authorize: Authorize,
		profilesStore: &fakeProfilesStore{
			GetFn: func(_ context.Context, id string) (Profile, error) {
				profile := Profile{}
				profile.ID = id
				return profile, nil
			},
		},
		auditWriter: audit.NewNopWriter(),
	}
	// A subject with no profile at all may still read their own record.
	ctx := ContextWithPrincipal(
		context.Background(),
		&Subject{ID: testProfileID},
	)
	profile, err := service.Get(ctx, testProfileID)
	require.NoError(t, err)
	require.Equal(t, testProfileID, profile.ID)

	// But not anyone else's.
	_, err = service.Get(ctx, "66666666-7777-8888-9999-aaaaaaaaaaaa")
	require.Error(t, err)
	require.IsType(t, &meta.ErrAuthorization{}, err)
}

func TestProfilesServiceListAppliesDefaultLimit(t *testing.T) {
	service := &profilesService{
		authorize: Authorize,
		profilesStore: &fakeProfilesStore{
			ListFn: func(
				_ context.Context,
				_ ProfilesSelector,
				opts meta.ListOptions,
			) (ProfileList, error) {
				require.Equal(t, int64(20), opts.Limit)
				return ProfileList{}, nil
			},
		},
		auditWriter: audit.NewNopWriter(),
	}
	_, err := service.List(adminContext(), ProfilesSelector{}, meta.ListOptions{})
	require.NoError(t, err)
}

func TestProfilesServiceLock(t *testing.T) {
	auditWriter := &recordingAuditWriter{}
	service := &profilesService{
		authorize: Authorize,
		profilesStore: &fakeProfilesStore{
			LockFn: func(_ context.Context, id string) error {
				require.Equal(t, testProfileID, id)
				return nil
			},
		},
		auditWriter: auditWriter,
	}
	require.NoError(t, service.Lock(adminContext(), testProfileID))
	require.Equal(t, []string{"profile:locked " + testProfileID}, auditWriter.events) // nolint: lll
}

func TestProfilesServiceVerify(t *testing.T) {
	auditWriter := &recordingAuditWriter{}
	service := &profilesService{
		authorize: Authorize,
		profilesStore: &fakeProfilesStore{
			VerifyFn: func(_ context.Context, id string) error {
				require.Equal(t, testProfileID, id)
				return nil
			},
		},
		auditWriter: auditWriter,
	}
	require.NoError(t, service.Verify(adminContext(), testProfileID))
	require.Equal(t, []string{"profile:verified " + testProfileID}, auditWriter.events) // nolint: lll
}
