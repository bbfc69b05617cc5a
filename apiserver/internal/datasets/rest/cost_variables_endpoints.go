package rest

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xeipuuv/gojsonschema"

	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/restmachinery"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// CostVariablesEndpoints implements restmachinery.Endpoints to provide
// cost-variables endpoints. Reads are public; writes require an admin or
// ingest token.
type CostVariablesEndpoints struct {
	*restmachinery.BaseEndpoints
	CostVariablesSchemaLoader gojsonschema.JSONLoader
	Service                   datasets.CostVariablesService
}

// Register associates the CostVariablesEndpoints endpoints with a router.
func (c *CostVariablesEndpoints) Register(router *mux.Router) {
	// Get cost variables
	router.HandleFunc(
		"/v2/cost-variables/{code}",
		c.get,
	).Methods(http.MethodGet)

	// Upsert cost variables
	router.HandleFunc(
		"/v2/cost-variables/{code}/{year}",
		c.TokenAuthFilter.Decorate(c.upsert),
	).Methods(http.MethodPut)
}

func (c *CostVariablesEndpoints) get(w http.ResponseWriter, r *http.Request) {
	opts, err := yearRangeFromRequest(r)
	if err != nil {
		c.WriteAPIResponse(w, http.StatusBadRequest, err)
		return
	}
	c.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return c.Service.Get(r.Context(), mux.Vars(r)["code"], opts)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (c *CostVariablesEndpoints) upsert(
	w http.ResponseWriter,
	r *http.Request,
) {
	year, err := yearFromPath(mux.Vars(r)["year"])
	if err != nil {
		c.WriteAPIResponse(w, http.StatusBadRequest, err)
		return
	}
	costs := datasets.CostVariables{}
	c.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: c.CostVariablesSchemaLoader,
			ReqBodyObj:          &costs,
			EndpointLogic: func() (interface{}, error) {
				if code := mux.Vars(r)["code"]; costs.Country != code ||
					costs.Year != year {
					return nil, &meta.ErrBadRequest{
						Reason: fmt.Sprintf(
							"The country and year in the request body %q/%d do not match "+
								"the country and year in the URL %q/%d",
							costs.Country,
							costs.Year,
							code,
							year,
						),
					}
				}
				return nil, c.Service.Upsert(r.Context(), costs)
			},
			SuccessCode: http.StatusOK,
		},
	)
}
