package meta

import "time"

// APIVersion represents the API and major version thereof with which this
// version of the API server is compatible.
const APIVersion = "github.com/greenorbit/phaseout"

// TypeMeta represents a resource type and the version of the API it belongs
// to.
type TypeMeta struct {
	Kind       string `json:"kind,omitempty" bson:"-"`
	APIVersion string `json:"apiVersion,omitempty" bson:"-"`
}

// ObjectMeta represents metadata common to many resource types.
type ObjectMeta struct {
	// ID is an immutable resource identifier.
	ID string `json:"id,omitempty" bson:"id,omitempty"`
	// Created indicates the time at which a resource was created.
	Created *time.Time `json:"created,omitempty" bson:"created,omitempty"`
	// LastUpdated indicates the time at which a resource was last updated.
	LastUpdated *time.Time `json:"lastUpdated,omitempty" bson:"lastUpdated,omitempty"` // nolint: lll
}

// ListMeta represents metadata common to all lists of resources.
type ListMeta struct {
	// Continue, when non-empty, indicates that a list contains only partial
	// results and its value may be used to fetch the next page.
	Continue string `json:"continue,omitempty"`
	// RemainingItemCount, when non-zero, indicates how many resources matching
	// a list operation remain beyond the current page.
	RemainingItemCount int64 `json:"remainingItemCount,omitempty"`
}

// ListOptions represents useful criteria for retrieving paged lists of
// resources.
type ListOptions struct {
	// Continue specifies an opaque value obtained from a previous list's
	// ListMeta.
	Continue string
	// Limit specifies the maximum number of items to return per page.
	Limit int64
}
