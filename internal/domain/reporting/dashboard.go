package reporting

type WidgetType int

const (
	WidgetChart WidgetType = iota
	WidgetMetric
	WidgetTable
)

func (t WidgetType) String() string {
	switch t {
	case WidgetChart:
		return "chart"
	case WidgetMetric:
		return "metric"
	case WidgetTable:
		return "table"
	default:
		return "unknown"
	}
}

// ChartData is the renderable payload backing a chart widget.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Kind   string    `json:"kind"`
}

// Position places a widget on the dashboard grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Size is a widget's grid footprint.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Widget is one dashboard tile. Placeholder holds the static data
// captured at dashboard-definition time; live data is resolved per
// widget id on every read and falls back to Placeholder for ids the
// engine does not recognize.
type Widget struct {
	ID          string         `json:"id"`
	Type        WidgetType     `json:"type"`
	Title       string         `json:"title"`
	Position    Position       `json:"position"`
	Size        Size           `json:"size"`
	Placeholder map[string]any `json:"placeholder"`
}

// Dashboard is a named, ordered collection of widgets. Layout is
// static; widget data is recomputed on each read.
type Dashboard struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Widgets []Widget `json:"widgets"`
}
