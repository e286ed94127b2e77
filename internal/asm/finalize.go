package asm

import (
	"strconv"

	"llasm/internal/trace"
)

// finalizeSteps run in this order once the whole file is read; the first
// failing step decides the reported error.
var finalizeSteps = []struct {
	name string
	run  func(*Parser) error
}{
	{"instruction metadata", (*Parser).bindPendingAttachments},
	{"attribute groups", (*Parser).mergeAttrGroups},
	{"block addresses", (*Parser).checkBlockAddresses},
	{"types", (*Parser).checkTypes},
	{"globals", (*Parser).checkGlobals},
	{"metadata", (*Parser).checkMetadata},
}

// finalize binds everything that was allowed to stay open until the end of
// the file and checks that nothing is still unresolved.
func (p *Parser) finalize() error {
	sp := p.span.Child(trace.ScopeStep, "finalize")
	defer sp.End("")

	for i, step := range finalizeSteps {
		if err := step.run(p); err != nil {
			sp.WithExtra("failed", strconv.Itoa(i+1)+" "+step.name)
			return err
		}
	}
	sp.WithExtra("globals", strconv.Itoa(len(p.m.Vars)+len(p.m.Funcs)+len(p.m.Aliases)))
	sp.WithExtra("md", strconv.Itoa(p.m.MD.Len()))
	return nil
}
