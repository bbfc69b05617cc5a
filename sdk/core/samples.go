package core

import (
	"context"
	"embed"
	"encoding/json"
	"sync"

	"github.com/greenorbit/phaseout/sdk/meta"
)

// Bundled sample data for a handful of focus countries. The dashboard's
// consumers must tolerate missing countries and unreachable servers, so reads
// fall back to these records rather than failing outright.
//
//go:embed samples/*.json
var sampleFS embed.FS

type sampleData struct {
	Countries []CountryInfo        `json:"countryInfo"`
	Costs     []CostVariables      `json:"costVariables"`
	Benefits  []BenefitVariables   `json:"benefitVariables"`
	Alignment []AlignmentDatum     `json:"alignmentData"`
	Finance   []ClimateFinanceFlow `json:"climateFinance"`
}

var (
	samples     sampleData
	samplesOnce sync.Once
)

// loadSamples parses the embedded sample data. The data ships inside the
// binary, so a parse failure is a packaging defect; it yields empty samples
// rather than an error.
func loadSamples() sampleData {
	samplesOnce.Do(func() {
		sampleBytes, err := sampleFS.ReadFile("samples/samples.json")
		if err != nil {
			return
		}
		_ = json.Unmarshal(sampleBytes, &samples) // nolint: errcheck
	})
	return samples
}

// SampleCountryInfo returns the bundled sample record for the specified
// country, if one exists.
func SampleCountryInfo(code string) (CountryInfo, bool) {
	for _, countryInfo := range loadSamples().Countries {
		if countryInfo.Code == code {
			return countryInfo, true
		}
	}
	return CountryInfo{}, false
}

func inYearRange(year int, opts *YearRangeOptions) bool {
	if opts == nil {
		return true
	}
	if opts.From != 0 && year < opts.From {
		return false
	}
	if opts.To != 0 && year > opts.To {
		return false
	}
	return true
}

// SampleCostVariables returns bundled sample cost estimates for the specified
// country and year range.
func SampleCostVariables(
	code string,
	opts *YearRangeOptions,
) CostVariablesList {
	list := CostVariablesList{}
	for _, costs := range loadSamples().Costs {
		if costs.Country == code && inYearRange(costs.Year, opts) {
			list.Items = append(list.Items, costs)
		}
	}
	return list
}

// SampleBenefitVariables returns bundled sample benefit estimates for the
// specified country and year range.
func SampleBenefitVariables(
	code string,
	opts *YearRangeOptions,
) BenefitVariablesList {
	list := BenefitVariablesList{}
	for _, benefits := range loadSamples().Benefits {
		if benefits.Country == code && inYearRange(benefits.Year, opts) {
			list.Items = append(list.Items, benefits)
		}
	}
	return list
}

// SampleAlignmentData returns bundled sample alignment data for the specified
// country and year range.
func SampleAlignmentData(
	code string,
	opts *YearRangeOptions,
) AlignmentDatumList {
	list := AlignmentDatumList{}
	for _, datum := range loadSamples().Alignment {
		if datum.Country == code && inYearRange(datum.Year, opts) {
			list.Items = append(list.Items, datum)
		}
	}
	return list
}

// SampleClimateFinance returns bundled sample finance flows for the specified
// country and year range.
func SampleClimateFinance(
	code string,
	opts *YearRangeOptions,
) ClimateFinanceFlowList {
	list := ClimateFinanceFlowList{}
	for _, flow := range loadSamples().Finance {
		if flow.Country == code && inYearRange(flow.Year, opts) {
			list.Items = append(list.Items, flow)
		}
	}
	return list
}

// The *WithSamples wrappers substitute bundled sample data for failed reads.
// Any read error triggers the fallback, a 404 and an unreachable server
// alike; the original error is returned only when no sample exists either.
// Upserts never fall back.

type countriesWithSamples struct {
	CountriesClient
}

func (c *countriesWithSamples) Get(
	ctx context.Context,
	code string,
) (CountryInfo, error) {
	countryInfo, err := c.CountriesClient.Get(ctx, code)
	if err != nil {
		if sample, ok := SampleCountryInfo(code); ok {
			return sample, nil
		}
		return countryInfo, err
	}
	return countryInfo, nil
}

func (c *countriesWithSamples) List(
	ctx context.Context,
	opts meta.ListOptions,
) (CountryInfoList, error) {
	countries, err := c.CountriesClient.List(ctx, opts)
	if err != nil {
		sampled := loadSamples().Countries
		if len(sampled) > 0 {
			return CountryInfoList{Items: sampled}, nil
		}
		return countries, err
	}
	return countries, nil
}

type costsWithSamples struct {
	CostsClient
}

func (c *costsWithSamples) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (CostVariablesList, error) {
	costs, err := c.CostsClient.Get(ctx, code, opts)
	if err != nil || len(costs.Items) == 0 {
		if sampled := SampleCostVariables(code, opts); len(sampled.Items) > 0 {
			return sampled, nil
		}
	}
	return costs, err
}

type benefitsWithSamples struct {
	BenefitsClient
}

func (b *benefitsWithSamples) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (BenefitVariablesList, error) {
	benefits, err := b.BenefitsClient.Get(ctx, code, opts)
	if err != nil || len(benefits.Items) == 0 {
		if sampled :=
			SampleBenefitVariables(code, opts); len(sampled.Items) > 0 {
			return sampled, nil
		}
	}
	return benefits, err
}

type alignmentWithSamples struct {
	AlignmentClient
}

func (a *alignmentWithSamples) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (AlignmentDatumList, error) {
	alignment, err := a.AlignmentClient.Get(ctx, code, opts)
	if err != nil || len(alignment.Items) == 0 {
		if sampled := SampleAlignmentData(code, opts); len(sampled.Items) > 0 {
			return sampled, nil
		}
	}
	return alignment, err
}

type financeWithSamples struct {
	FinanceClient
}

func (f *financeWithSamples) Get(
	ctx context.Context,
	code string,
	opts *YearRangeOptions,
) (ClimateFinanceFlowList, error) {
	flows, err := f.FinanceClient.Get(ctx, code, opts)
	if err != nil || len(flows.Items) == 0 {
		if sampled := SampleClimateFinance(code, opts); len(sampled.Items) > 0 {
			return sampled, nil
		}
	}
	return flows, err
}
