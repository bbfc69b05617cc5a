package authx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/greenorbit/phaseout/apiserver/internal/audit"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// Role determines what a profile's owner is permitted to do.
type Role string

const (
	// RoleUser is the ordinary dashboard user role.
	RoleUser Role = "user"
	// RoleAdmin enables profile administration and dataset upserts.
	RoleAdmin Role = "admin"
	// RoleIngest is held only by the data-ingest pipeline principal.
	RoleIngest Role = "ingest"
)

// Profile represents the application's own record of a user, keyed by the
// identity gateway's user ID.
type Profile struct {
	meta.ObjectMeta `json:"metadata" bson:",inline"`
	Name            string     `json:"name" bson:"name"`
	Email           string     `json:"email" bson:"email"`
	Role            Role       `json:"role" bson:"role"`
	Verified        bool       `json:"verified" bson:"verified"`
	Locked          *time.Time `json:"locked" bson:"locked"`
}

// MarshalJSON amends Profile instances with type metadata.
func (p Profile) MarshalJSON() ([]byte, error) {
	type Alias Profile
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "Profile",
			},
			Alias: (Alias)(p),
		},
	)
}

// ProfilesSelector represents useful filter criteria when selecting multiple
// Profiles for API group operations like list. It currently has no fields,
// but exists for future expansion.
type ProfilesSelector struct{}

// ProfileList is an ordered and pageable list of Profiles.
type ProfileList struct {
	meta.ListMeta `json:"metadata"`
	Items         []Profile `json:"items,omitempty"`
}

// MarshalJSON amends ProfileList instances with type metadata.
func (p ProfileList) MarshalJSON() ([]byte, error) {
	type Alias ProfileList
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "ProfileList",
			},
			Alias: (Alias)(p),
		},
	)
}

// ProfilesService is the specialized interface for managing Profiles. It's
// decoupled from underlying technology choices (e.g. data store) to keep
// business logic reusable and consistent while the underlying tech stack
// remains free to change.
type ProfilesService interface {
	// Create adds a new profile record. Profiles are provisioned by
	// administrators; a gateway account without one cannot use the dashboard.
	Create(context.Context, Profile) (Profile, error)
	// Get retrieves a single Profile specified by the gateway user ID it is
	// keyed by.
	Get(context.Context, string) (Profile, error)
	// List returns a ProfileList.
	List(context.Context, ProfilesSelector, meta.ListOptions) (ProfileList, error) // nolint: lll
	// Lock revokes dashboard access for a single Profile specified by its
	// identifier.
	Lock(context.Context, string) error
	// Unlock restores dashboard access for a single Profile specified by its
	// identifier.
	Unlock(context.Context, string) error
	// Verify marks a single Profile specified by its identifier as approved
	// for access.
	Verify(context.Context, string) error
}

type profilesService struct {
	authorize     AuthorizeFn
	profilesStore ProfilesStore
	auditWriter   audit.Writer
}

// NewProfilesService returns a specialized interface for managing Profiles.
func NewProfilesService(
	profilesStore ProfilesStore,
	auditWriter audit.Writer,
) ProfilesService {
	return &profilesService{
		authorize:     Authorize,
		profilesStore: profilesStore,
		auditWriter:   auditWriter,
	}
}

func (p *profilesService) Create(
	ctx context.Context,
	profile Profile,
) (Profile, error) {
	if err := p.authorize(ctx, RoleAdmin); err != nil {
		return Profile{}, err
	}

	now := time.Now()
	profile.Created = &now
	if err := p.profilesStore.Create(ctx, profile); err != nil {
		return profile, errors.Wrapf(
			err,
			"error storing new profile %q",
			profile.ID,
		)
	}
	p.auditWriter.Record(ctx, audit.ProfileCreated, profile.ID)
	return profile, nil
}

func (p *profilesService) Get(
	ctx context.Context,
	id string,
) (Profile, error) {
	if err := AuthorizeSelfOrAdmin(ctx, id); err != nil {
		return Profile{}, err
	}

	profile, err := p.profilesStore.Get(ctx, id)
	if err != nil {
		return profile, errors.Wrapf(
			err,
			"error retrieving profile %q from store",
			id,
		)
	}
	return profile, nil
}

func (p *profilesService) List(
	ctx context.Context,
	selector ProfilesSelector,
	opts meta.ListOptions,
) (ProfileList, error) {
	if err := p.authorize(ctx, RoleAdmin); err != nil {
		return ProfileList{}, err
	}

	if opts.Limit == 0 {
		opts.Limit = 20
	}
	profiles, err := p.profilesStore.List(ctx, selector, opts)
	if err != nil {
		return profiles, errors.Wrap(err, "error retrieving profiles from store")
	}
	return profiles, nil
}

func (p *profilesService) Lock(ctx context.Context, id string) error {
	if err := p.authorize(ctx, RoleAdmin); err != nil {
		return err
	}

	if err := p.profilesStore.Lock(ctx, id); err != nil {
		return errors.Wrapf(err, "error locking profile %q in store", id)
	}
	p.auditWriter.Record(ctx, audit.ProfileLocked, id)
	return nil
}

func (p *profilesService) Unlock(ctx context.Context, id string) error {
	if err := p.authorize(ctx, RoleAdmin); err != nil {
		return err
	}

	if err := p.profilesStore.Unlock(ctx, id); err != nil {
		return errors.Wrapf(err, "error unlocking profile %q in store", id)
	}
	p.auditWriter.Record(ctx, audit.ProfileUnlocked, id)
	return nil
}

func (p *profilesService) Verify(ctx context.Context, id string) error {
	if err := p.authorize(ctx, RoleAdmin); err != nil {
		return err
	}

	if err := p.profilesStore.Verify(ctx, id); err != nil {
		return errors.Wrapf(err, "error verifying profile %q in store", id)
	}
	p.auditWriter.Record(ctx, audit.ProfileVerified, id)
	return nil
}

// ProfilesStore is an interface for components that can manage persistence of
// Profiles.
type ProfilesStore interface {
	Create(context.Context, Profile) error
	Get(context.Context, string) (Profile, error)
	List(context.Context, ProfilesSelector, meta.ListOptions) (ProfileList, error) // nolint: lll
	Lock(context.Context, string) error
	Unlock(context.Context, string) error
	Verify(context.Context, string) error
}
