package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/xeipuuv/gojsonschema"

	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/restmachinery"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// CountryInfoEndpoints implements restmachinery.Endpoints to provide
// country-info endpoints. Reads are public; writes require an admin or ingest
// token.
type CountryInfoEndpoints struct {
	*restmachinery.BaseEndpoints
	CountryInfoSchemaLoader gojsonschema.JSONLoader
	Service                 datasets.CountryInfoService
}

// Register associates the CountryInfoEndpoints endpoints with a router.
func (c *CountryInfoEndpoints) Register(router *mux.Router) {
	// List country info
	router.HandleFunc(
		"/v2/country-info",
		c.list,
	).Methods(http.MethodGet)

	// Get country info
	router.HandleFunc(
		"/v2/country-info/{code}",
		c.get,
	).Methods(http.MethodGet)

	// Upsert country info
	router.HandleFunc(
		"/v2/country-info/{code}",
		c.TokenAuthFilter.Decorate(c.upsert),
	).Methods(http.MethodPut)
}

func (c *CountryInfoEndpoints) list(w http.ResponseWriter, r *http.Request) {
	opts := meta.ListOptions{
		Continue: r.URL.Query().Get("continue"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		if opts.Limit, err = strconv.ParseInt(limitStr, 10, 64); err != nil ||
			opts.Limit < 1 || opts.Limit > 100 {
			c.WriteAPIResponse(
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
	c.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return c.Service.List(r.Context(), opts)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (c *CountryInfoEndpoints) get(w http.ResponseWriter, r *http.Request) {
	c.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return c.Service.Get(r.Context(), mux.Vars(r)["code"])
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (c *CountryInfoEndpoints) upsert(w http.ResponseWriter, r *http.Request) {
	countryInfo := datasets.CountryInfo{}
	c.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: c.CountryInfoSchemaLoader,
			ReqBodyObj:          &countryInfo,
			EndpointLogic: func() (interface{}, error) {
				if code := mux.Vars(r)["code"]; countryInfo.Code != code {
					return nil, &meta.ErrBadRequest{
						Reason: fmt.Sprintf(
							"The country code in the request body %q does not match the "+
								"country code in the URL %q",
							countryInfo.Code,
							code,
						),
					}
				}
				return nil, c.Service.Upsert(r.Context(), countryInfo)
			},
			SuccessCode: http.StatusOK,
		},
	)
}
