package diag

import "llasm/internal/source"

// Reporter: минимальный контракт получения диагностик от лексера и парсера.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(code Code, sev Severity, primary source.Span, msg string, notes []Note)

func (f ReporterFunc) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	f(code, sev, primary, msg, notes)
}

// ReportBuilder collects notes for one diagnostic before it is emitted.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder starts a diagnostic for r; r may be nil.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary},
	}
}

// ReportError starts an error diagnostic.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// WithNote appends a secondary location, e.g. the earlier definition of a
// redefined name.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	b.diag.Notes = append(b.diag.Notes, Note{Span: sp, Msg: msg})
	return b
}

// Emit hands the diagnostic to the reporter on the first call and returns it.
func (b *ReportBuilder) Emit() Diagnostic {
	if !b.emitted && b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Primary, b.diag.Message, b.diag.Notes)
	}
	b.emitted = true
	return b.diag
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
}

// FirstError forwards everything to Next and remembers the first error.
// The reader stops at that error, so it is the one worth returning.
type FirstError struct {
	Next  Reporter
	first *Diagnostic
}

func (r *FirstError) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if sev == SevError && r.first == nil {
		r.first = &Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes}
	}
	if r.Next != nil {
		r.Next.Report(code, sev, primary, msg, notes)
	}
}

// First returns the first error seen.
func (r *FirstError) First() (Diagnostic, bool) {
	if r.first == nil {
		return Diagnostic{}, false
	}
	return *r.first, true
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, source.Span, string, []Note) {}
