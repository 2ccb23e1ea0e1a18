package diagfmt

import (
	"io"
	"slices"

	"github.com/goccy/go-json"

	"qgraph/internal/diag"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool         `json:"tool"`
	AutomationDetails *sarifAutomation  `json:"automationDetails,omitempty"`
	Invocations       []sarifInvocation `json:"invocations,omitempty"`
	Results           []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifAutomation struct {
	GUID string `json:"guid"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations"`
	Message          *sarifMessage          `json:"message,omitempty"`
}

type sarifLogicalLocation struct {
	Name               string `json:"name"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevInfo:
		return "note"
	case diag.SevWarning:
		return "warning"
	}
	return "error"
}

// logicalLocation maps a finding to SARIF's logical location model. Values
// are qualified as method/%value, nodes as method/[node].
func logicalLocation(loc diag.Location) (sarifLogicalLocation, bool) {
	switch {
	case loc.Value != "":
		return sarifLogicalLocation{Name: "%" + loc.Value, FullyQualifiedName: loc.Method + "/%" + loc.Value, Kind: "variable"}, true
	case loc.Node != "":
		return sarifLogicalLocation{Name: loc.Node, FullyQualifiedName: loc.Method + "/[" + loc.Node + "]", Kind: "member"}, true
	case loc.Method != "":
		return sarifLogicalLocation{Name: loc.Method, FullyQualifiedName: loc.Method, Kind: "function"}, true
	}
	return sarifLogicalLocation{}, false
}

func sarifLocations(d diag.Diagnostic) []sarifLocation {
	var out []sarifLocation
	if ll, ok := logicalLocation(d.Loc); ok {
		out = append(out, sarifLocation{LogicalLocations: []sarifLogicalLocation{ll}})
	}
	for _, n := range d.Notes {
		if ll, ok := logicalLocation(n.Loc); ok {
			out = append(out, sarifLocation{LogicalLocations: []sarifLogicalLocation{ll}, Message: &sarifMessage{Text: n.Msg}})
		}
	}
	return out
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0)
func Sarif(w io.Writer, bag *diag.Bag, meta SarifRunMeta) error {
	var items []diag.Diagnostic
	if bag != nil {
		items = bag.Items()
	}
	var codes []diag.Code
	for _, d := range items {
		if d.Severity >= meta.MinSeverity && !slices.Contains(codes, d.Code) {
			codes = append(codes, d.Code)
		}
	}
	slices.Sort(codes)

	rules := make([]sarifRule, len(codes))
	for i, c := range codes {
		rules[i] = sarifRule{ID: c.ID(), ShortDescription: sarifMessage{Text: c.Title()}}
	}
	results := make([]sarifResult, 0, len(items))
	failed := false
	for _, d := range items {
		if d.Severity == diag.SevError {
			failed = true
		}
		if d.Severity < meta.MinSeverity {
			continue
		}
		idx, _ := slices.BinarySearch(codes, d.Code)
		results = append(results, sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: idx,
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
			Locations: sarifLocations(d),
		})
	}

	run := sarifRun{
		Tool:        sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion, Rules: rules}},
		Invocations: []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: !failed}},
		Results:     results,
	}
	if meta.RunID != "" {
		run.AutomationDetails = &sarifAutomation{GUID: meta.RunID}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}})
}
