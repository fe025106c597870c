package census

import (
	d "github.com/invertedv/nicsdf"
)

// Record is one state of the cleaned table.
type Record struct {
	State                      string
	Population2016             float64
	Population2010             float64
	PercentChangePopulation    float64
	PercentOver65In2016        float64
	PercentOver65In2010        float64
	HSDiplomaPercentage        float64
	BachelorsDegreePercentage  float64
	UninsuredPercentage        float64
	TotalEmploymentPercentage  float64
	FemaleEmploymentPercentage float64
	MedianIncome               float64
	IncomePerCapita            float64
	PovertyPercentage          float64
	NumberOfEmployers          float64
	PopulationDensity          float64
	LandArea                   float64
}

// Records returns the rows of a table produced by Clean with DefaultFacts.
func Records(t *d.Table) ([]Record, error) {
	states, e := t.Strings(StateColumn)
	if e != nil {
		return nil, e
	}

	cols := make(map[string][]float64)
	for _, f := range DefaultFacts {
		if cols[f.Name], e = t.Floats(f.Name); e != nil {
			return nil, e
		}
	}

	recs := make([]Record, len(states))
	for ind, s := range states {
		recs[ind] = Record{
			State:                      s,
			Population2016:             cols["population_2016"][ind],
			Population2010:             cols["population_2010"][ind],
			PercentChangePopulation:    cols["percent_change_population"][ind],
			PercentOver65In2016:        cols["percent_over_65_2016"][ind],
			PercentOver65In2010:        cols["percent_over_65_2010"][ind],
			HSDiplomaPercentage:        cols["hs_diploma_percentage"][ind],
			BachelorsDegreePercentage:  cols["bachelors_degree_percentage"][ind],
			UninsuredPercentage:        cols["uninsured_percentage"][ind],
			TotalEmploymentPercentage:  cols["total_employment_percentage"][ind],
			FemaleEmploymentPercentage: cols["female_employment_percentage"][ind],
			MedianIncome:               cols["median_income"][ind],
			IncomePerCapita:            cols["income_per_capita"][ind],
			PovertyPercentage:          cols["poverty_percentage"][ind],
			NumberOfEmployers:          cols["number_of_employers"][ind],
			PopulationDensity:          cols["population_density"][ind],
			LandArea:                   cols["land_area"][ind],
		}
	}

	return recs, nil
}
