package types

// Record is a single computed statistic together with the formula it was
// derived from and the ordered derivation steps shown to the user.
type Record struct {
	Value          *float64  `json:"value"`
	Values         []float64 `json:"values,omitempty"`
	Formula        string    `json:"formula"`
	Description    string    `json:"description"`
	Steps          []string  `json:"steps,omitempty"`
	Interpretation string    `json:"interpretation,omitempty"`
	Warning        string    `json:"warning,omitempty"`
}

// Float returns a pointer to v, for Record values that may be absent
// (e.g. the mode of a dataset where every value is unique).
func Float(v float64) *float64 {
	return &v
}

// Result is the response envelope for a computation request.
type Result struct {
	Success         bool                   `json:"success"`
	Results         interface{}            `json:"results,omitempty"`
	InputParameters map[string]interface{} `json:"input_parameters,omitempty"`
	Error           *string                `json:"error,omitempty"`
}

// Engine describes a computation engine and the calculations it offers.
type Engine struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	Calculations []Calc   `json:"calculations"`
}

// Calc describes one calculation kind an engine supports.
type Calc struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter describes a calculation input field.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}
