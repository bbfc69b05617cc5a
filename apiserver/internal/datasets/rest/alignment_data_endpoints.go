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

// AlignmentDataEndpoints implements restmachinery.Endpoints to provide
// alignment-data endpoints. Reads are public; writes require an admin or
// ingest token.
type AlignmentDataEndpoints struct {
	*restmachinery.BaseEndpoints
	AlignmentDatumSchemaLoader gojsonschema.JSONLoader
	Service                    datasets.AlignmentDataService
}

// Register associates the AlignmentDataEndpoints endpoints with a router.
func (a *AlignmentDataEndpoints) Register(router *mux.Router) {
	// Get alignment data
	router.HandleFunc(
		"/v2/alignment-data/{code}",
		a.get,
	).Methods(http.MethodGet)

	// Upsert alignment datum
	router.HandleFunc(
		"/v2/alignment-data/{code}/{year}",
		a.TokenAuthFilter.Decorate(a.upsert),
	).Methods(http.MethodPut)
}

func (a *AlignmentDataEndpoints) get(w http.ResponseWriter, r *http.Request) {
	opts, err := yearRangeFromRequest(r)
	if err != nil {
		a.WriteAPIResponse(w, http.StatusBadRequest, err)
		return
	}
	a.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return a.Service.Get(r.Context(), mux.Vars(r)["code"], opts)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (a *AlignmentDataEndpoints) upsert(
	w http.ResponseWriter,
	r *http.Request,
) {
	year, err := yearFromPath(mux.Vars(r)["year"])
	if err != nil {
		a.WriteAPIResponse(w, http.StatusBadRequest, err)
		return
	}
	datum := datasets.AlignmentDatum{}
	a.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: a.AlignmentDatumSchemaLoader,
			ReqBodyObj:          &datum,
			EndpointLogic: func() (interface{}, error) {
				if code := mux.Vars(r)["code"]; datum.Country != code ||
					datum.Year != year {
					return nil, &meta.ErrBadRequest{
						Reason: fmt.Sprintf(
							"The country and year in the request body %q/%d do not match "+
								"the country and year in the URL %q/%d",
							datum.Country,
							datum.Year,
							code,
							year,
						),
					}
				}
				return nil, a.Service.Upsert(r.Context(), datum)
			},
			SuccessCode: http.StatusOK,
		},
	)
}
