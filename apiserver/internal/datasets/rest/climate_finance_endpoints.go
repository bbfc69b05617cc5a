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

// ClimateFinanceEndpoints implements restmachinery.Endpoints to provide
// climate-finance endpoints. Reads are public; writes require an admin or
// ingest token.
type ClimateFinanceEndpoints struct {
	*restmachinery.BaseEndpoints
	ClimateFinanceFlowSchemaLoader gojsonschema.JSONLoader
	Service                        datasets.ClimateFinanceService
}

// Register associates the ClimateFinanceEndpoints endpoints with a router.
func (c *ClimateFinanceEndpoints) Register(router *mux.Router) {
	// Get climate finance
	router.HandleFunc(
		"/v2/climate-finance/{code}",
		c.get,
	).Methods(http.MethodGet)

	// Upsert climate finance flow
	router.HandleFunc(
		"/v2/climate-finance/{code}/{year}",
		c.TokenAuthFilter.Decorate(c.upsert),
	).Methods(http.MethodPut)
}

func (c *ClimateFinanceEndpoints) get(w http.ResponseWriter, r *http.Request) {
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

func (c *ClimateFinanceEndpoints) upsert(
	w http.ResponseWriter,
	r *http.Request,
) {
	year, err := yearFromPath(mux.Vars(r)["year"])
	if err != nil {
		c.WriteAPIResponse(w, http.StatusBadRequest, err)
		return
	}
	flow := datasets.ClimateFinanceFlow{}
	c.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: c.ClimateFinanceFlowSchemaLoader,
			ReqBodyObj:          &flow,
			EndpointLogic: func() (interface{}, error) {
				if code := mux.Vars(r)["code"]; flow.Country != code ||
					flow.Year != year {
					return nil, &meta.ErrBadRequest{
						Reason: fmt.Sprintf(
							"The country and year in the request body %q/%d do not match "+
								"the country and year in the URL %q/%d",
							flow.Country,
							flow.Year,
							code,
							year,
						),
					}
				}
				return nil, c.Service.Upsert(r.Context(), flow)
			},
			SuccessCode: http.StatusOK,
		},
	)
}
