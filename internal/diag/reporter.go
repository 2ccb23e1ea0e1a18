package diag

// Reporter is the minimal contract for receiving diagnostics from passes.
type Reporter interface {
	Report(code Code, sev Severity, loc Location, msg string, notes []Note)
}

// Emit sends d through r. A nil reporter drops it.
func Emit(r Reporter, d Diagnostic) {
	if r == nil {
		return
	}
	r.Report(d.Code, d.Severity, d.Loc, d.Message, d.Notes)
}

// BagReporter stores diagnostics into Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, loc Location, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Loc: loc, Notes: notes,
	})
}

// NopReporter drops every diagnostic.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, Location, string, []Note) {}
