package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// yearRangeFromRequest extracts optional "from" and "to" query parameters. A
// non-numeric value is reported as a bad request.
func yearRangeFromRequest(
	r *http.Request,
) (*datasets.YearRangeOptions, error) {
	opts := &datasets.YearRangeOptions{}
	for param, target := range map[string]*int{
		"from": &opts.From,
		"to":   &opts.To,
	} {
		valStr := r.URL.Query().Get(param)
		if valStr == "" {
			continue
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			return nil, &meta.ErrBadRequest{
				Reason: fmt.Sprintf(
					"Invalid value %q for %q query parameter",
					valStr,
					param,
				),
			}
		}
		*target = val
	}
	return opts, nil
}

// yearFromPath parses the year segment of a request path.
func yearFromPath(yearStr string) (int, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, &meta.ErrBadRequest{
			Reason: fmt.Sprintf("Invalid value %q for year path parameter", yearStr),
		}
	}
	return year, nil
}
