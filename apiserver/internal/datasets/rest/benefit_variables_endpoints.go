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

// BenefitVariablesEndpoints implements restmachinery.Endpoints to provide
// benefit-variables endpoints. Reads are public; writes require an admin or
// ingest token.
type BenefitVariablesEndpoints struct {
	*restmachinery.BaseEndpoints
	BenefitVariablesSchemaLoader gojsonschema.JSONLoader
	Service                      datasets.BenefitVariablesService
}

// Register associates the BenefitVariablesEndpoints endpoints with a router.
func (b *BenefitVariablesEndpoints) Register(router *mux.Router) {
	// Get benefit variables
	router.HandleFunc(
		"/v2/benefit-variables/{code}",
		b.get,
	).Methods(http.MethodGet)

	// Upsert benefit variables
	router.HandleFunc(
		"/v2/benefit-variables/{code}/{year}",
		b.TokenAuthFilter.Decorate(b.upsert),
	).Methods(http.MethodPut)
}

func (b *BenefitVariablesEndpoints) get(
	w http.ResponseWriter,
	r *http.Request,
) {
	opts, err := yearRangeFromRequest(r)
	if err != nil {
		b.WriteAPIResponse(w, http.StatusBadRequest, err)
		return
	}
	b.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return b.Service.Get(r.Context(), mux.Vars(r)["code"], opts)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (b *BenefitVariablesEndpoints) upsert(
	w http.ResponseWriter,
	r *http.Request,
) {
	year, err := yearFromPath(mux.Vars(r)["year"])
	if err != nil {
		b.WriteAPIResponse(w, http.StatusBadRequest, err)
		return
	}
	benefits := datasets.BenefitVariables{}
	b.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: b.BenefitVariablesSchemaLoader,
			ReqBodyObj:          &benefits,
			EndpointLogic: func() (interface{}, error) {
				if code := mux.Vars(r)["code"]; benefits.Country != code ||
					benefits.Year != year {
					return nil, &meta.ErrBadRequest{
						Reason: fmt.Sprintf(
							"The country and year in the request body %q/%d do not match "+
								"the country and year in the URL %q/%d",
							benefits.Country,
							benefits.Year,
							code,
							year,
						),
					}
				}
				return nil, b.Service.Upsert(r.Context(), benefits)
			},
			SuccessCode: http.StatusOK,
		},
	)
}
