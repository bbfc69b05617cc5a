package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenorbit/phaseout/apiserver/internal/authx"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

const createIndexTimeout = 5 * time.Second

type profilesStore struct {
	collection *mongo.Collection
}

// NewProfilesStore returns a MongoDB-based implementation of
// authx.ProfilesStore.
func NewProfilesStore(
	database *mongo.Database,
) (authx.ProfilesStore, error) {
	ctx, cancel :=
		context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()
	unique := true
	collection := database.Collection("profiles")
	if _, err := collection.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.M{
				"id": 1,
			},
			Options: &options.IndexOptions{
				Unique: &unique,
			},
		},
	); err != nil {
		return nil, errors.Wrap(
			err,
			"error adding indexes to profiles collection",
		)
	}
	return &profilesStore{
		collection: collection,
	}, nil
}

func (p *profilesStore) Create(
	ctx context.Context,
	profile authx.Profile,
) error {
	if _, err := p.collection.InsertOne(ctx, profile); err != nil {
		if writeException, ok := err.(mongo.WriteException); ok {
			if len(writeException.WriteErrors) == 1 &&
				writeException.WriteErrors[0].Code == 11000 {
				return &meta.ErrConflict{
					Type: "Profile",
					ID:   profile.ID,
					Reason: fmt.Sprintf(
						"A profile with the ID %q already exists.",
						profile.ID,
					),
				}
			}
		}
		return errors.Wrapf(err, "error inserting new profile %q", profile.ID)
	}
	return nil
}

func (p *profilesStore) Get(
	ctx context.Context,
	id string,
) (authx.Profile, error) {
	profile := authx.Profile{}
	res := p.collection.FindOne(ctx, bson.M{"id": id})
	if res.Err() == mongo.ErrNoDocuments {
		return profile, &meta.ErrNotFound{
			Type: "Profile",
			ID:   id,
		}
	}
	if res.Err() != nil {
		return profile, errors.Wrapf(res.Err(), "error finding profile %q", id)
	}
	if err := res.Decode(&profile); err != nil {
		return profile, errors.Wrapf(err, "error decoding profile %q", id)
	}
	return profile, nil
}

func (p *profilesStore) List(
	ctx context.Context,
	_ authx.ProfilesSelector,
	opts meta.ListOptions,
) (authx.ProfileList, error) {
	profiles := authx.ProfileList{}

	criteria := bson.M{}
	if opts.Continue != "" {
		criteria["id"] = bson.M{"$gt": opts.Continue}
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"id": 1})
	findOptions.SetLimit(opts.Limit)
	cur, err := p.collection.Find(ctx, criteria, findOptions)
	if err != nil {
		return profiles, errors.Wrap(err, "error finding profiles")
	}
	if err := cur.All(ctx, &profiles.Items); err != nil {
		return profiles, errors.Wrap(err, "error decoding profiles")
	}

	if int64(len(profiles.Items)) == opts.Limit {
		continueID := profiles.Items[opts.Limit-1].ID
		criteria["id"] = bson.M{"$gt": continueID}
		remaining, err := p.collection.CountDocuments(ctx, criteria)
		if err != nil {
			return profiles, errors.Wrap(err, "error counting remaining profiles")
		}
		if remaining > 0 {
			profiles.Continue = continueID
			profiles.RemainingItemCount = remaining
		}
	}

	return profiles, nil
}

func (p *profilesStore) Lock(ctx context.Context, id string) error {
	res, err := p.collection.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{
			"$set": bson.M{
				"locked": time.Now(),
			},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating profile %q", id)
	}
	if res.MatchedCount == 0 {
		return &meta.ErrNotFound{
			Type: "Profile",
			ID:   id,
		}
	}
	return nil
}

func (p *profilesStore) Unlock(ctx context.Context, id string) error {
	res, err := p.collection.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{
			"$set": bson.M{
				"locked": nil,
			},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating profile %q", id)
	}
	if res.MatchedCount == 0 {
		return &meta.ErrNotFound{
			Type: "Profile",
			ID:   id,
		}
	}
	return nil
}

func (p *profilesStore) Verify(ctx context.Context, id string) error {
	res, err := p.collection.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{
			"$set": bson.M{
				"verified": true,
			},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating profile %q", id)
	}
	if res.MatchedCount == 0 {
		return &meta.ErrNotFound{
			Type: "Profile",
			ID:   id,
		}
	}
	return nil
}
