package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/xeipuuv/gojsonschema"

	"github.com/greenorbit/phaseout/apiserver/internal/authx"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/restmachinery"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// ProfilesEndpoints implements restmachinery.Endpoints to provide profile
// management endpoints.
type ProfilesEndpoints struct {
	*restmachinery.BaseEndpoints
	ProfileSchemaLoader gojsonschema.JSONLoader
	Service             authx.ProfilesService
}

// Register associates the ProfilesEndpoints endpoints with a router.
func (p *ProfilesEndpoints) Register(router *mux.Router) {
	// Create profile
	router.HandleFunc(
		"/v2/profiles",
		p.TokenAuthFilter.Decorate(p.create),
	).Methods(http.MethodPost)

	// List profiles
	router.HandleFunc(
		"/v2/profiles",
		p.TokenAuthFilter.Decorate(p.list),
	).Methods(http.MethodGet)

	// Get profile
	router.HandleFunc(
		"/v2/profiles/{id}",
		p.TokenAuthFilter.Decorate(p.get),
	).Methods(http.MethodGet)

	// Lock profile
	router.HandleFunc(
		"/v2/profiles/{id}/lock",
		p.TokenAuthFilter.Decorate(p.lock),
	).Methods(http.MethodPut)

	// Unlock profile
	router.HandleFunc(
		"/v2/profiles/{id}/lock",
		p.TokenAuthFilter.Decorate(p.unlock),
	).Methods(http.MethodDelete)

	// Verify profile
	router.HandleFunc(
		"/v2/profiles/{id}/verification",
		p.TokenAuthFilter.Decorate(p.verify),
	).Methods(http.MethodPut)
}

func (p *ProfilesEndpoints) create(w http.ResponseWriter, r *http.Request) {
	profile := authx.Profile{}
	p.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: p.ProfileSchemaLoader,
			ReqBodyObj:          &profile,
			EndpointLogic: func() (interface{}, error) {
				return p.Service.Create(r.Context(), profile)
			},
			SuccessCode: http.StatusCreated,
		},
	)
}

func (p *ProfilesEndpoints) list(w http.ResponseWriter, r *http.Request) {
	opts := meta.ListOptions{
		Continue: r.URL.Query().Get("continue"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		if opts.Limit, err = strconv.ParseInt(limitStr, 10, 64); err != nil ||
			opts.Limit < 1 || opts.Limit > 100 {
			p.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&meta.ErrBadRequest{
					Reason: fmt.Sprintf(
						`Invalid value %q for "limit" query parameter`,
						limitStr,
					),
				},
			)
			return
		}
	}
	p.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return p.Service.List(r.Context(), authx.ProfilesSelector{}, opts)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *ProfilesEndpoints) get(w http.ResponseWriter, r *http.Request) {
	p.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return p.Service.Get(r.Context(), mux.Vars(r)["id"])
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *ProfilesEndpoints) lock(w http.ResponseWriter, r *http.Request) {
	p.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return nil, p.Service.Lock(r.Context(), mux.Vars(r)["id"])
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *ProfilesEndpoints) unlock(w http.ResponseWriter, r *http.Request) {
	p.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return nil, p.Service.Unlock(r.Context(), mux.Vars(r)["id"])
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *ProfilesEndpoints) verify(w http.ResponseWriter, r *http.Request) {
	p.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return nil, p.Service.Verify(r.Context(), mux.Vars(r)["id"])
			},
			SuccessCode: http.StatusOK,
		},
	)
}
