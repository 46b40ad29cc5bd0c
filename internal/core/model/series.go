package model

// Dataset is one named line or bar group of a chart. Values are aligned
// index by index with the owning ChartSeries labels.
type Dataset struct {
	Name   string    `json:"name"`
	Color  string    `json:"color,omitempty"`
	Values []float64 `json:"values"`
}

// ChartSeries is the chart-ready output of the engine.
type ChartSeries struct {
	Labels   []DateBucketKey `json:"labels"`
	Datasets []Dataset       `json:"datasets"`
}

// Dataset returns the dataset with the given name, if any.
func (s ChartSeries) Dataset(name string) (Dataset, bool) {
	for _, ds := range s.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return Dataset{}, false
}

// LabelStrings renders the labels for display.
func (s ChartSeries) LabelStrings() []string {
	out := make([]string, len(s.Labels))
	for i, l := range s.Labels {
		out[i] = l.String()
	}
	return out
}

// IsEmpty reports whether the series has no days.
func (s ChartSeries) IsEmpty() bool {
	return len(s.Labels) == 0
}
