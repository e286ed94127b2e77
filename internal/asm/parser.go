package asm

import (
	"context"
	"fmt"
	"slices"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/lexer"
	"llasm/internal/source"
	"llasm/internal/token"
	"llasm/internal/trace"
)

// AlignPolicy decides what happens to align=N inside attribute groups.
type AlignPolicy uint8

const (
	// AlignMigrate moves the alignment onto the function's align field.
	AlignMigrate AlignPolicy = iota
	// AlignReject refuses align=N in attribute groups.
	AlignReject
)

type Options struct {
	// Reporter receives the failing diagnostic; может быть nil.
	Reporter diag.Reporter
	// ModuleName is stored on the resulting module.
	ModuleName string
	AlignAttr  AlignPolicy
}

// Parser: состояние ридера на один файл. Все таблицы живут ровно один
// вызов Parse и выбрасываются вместе с ним.
type Parser struct {
	lx       *lexer.Lexer
	file     *source.File
	opts     Options
	lexErr   *diag.FirstError // the parser fails with it on an Invalid token
	lastSpan source.Span

	m *ir.Module
	t *ir.Types

	types  *typeTable
	glob   *globalTable
	md     *mdTable
	groups *attrGroupTable
	baddr  *blockAddrTable

	fn *funcState // nil вне тела функции

	span *trace.Span // file span; steps and function bodies hang under it
}

// Parse reads one module. It stops at the first error; the returned module
// is nil in that case and every placeholder created so far is dropped.
func Parse(ctx context.Context, file *source.File, opts Options) (*ir.Module, error) {
	p := newParser(ctx, file, opts)
	defer p.span.End("")

	if err := p.parseModule(); err != nil {
		p.span.WithExtra("error", err.Error())
		return nil, err
	}
	if err := p.finalize(); err != nil {
		p.span.WithExtra("error", err.Error())
		return nil, err
	}
	return p.m, nil
}

func newParser(ctx context.Context, file *source.File, opts Options) *Parser {
	capture := &diag.FirstError{Next: opts.Reporter}
	name := opts.ModuleName
	if name == "" {
		name = file.Path
	}
	m := ir.NewModule(name)
	span, _ := trace.Start(ctx, trace.ScopeFile, "parse "+file.Path)
	return &Parser{
		lx:     lexer.New(file, lexer.Options{Reporter: capture}),
		file:   file,
		opts:   opts,
		lexErr: capture,
		m:      m,
		t:      m.Types,
		types:  newTypeTable(),
		glob:   newGlobalTable(),
		md:     newMDTable(),
		groups: newAttrGroupTable(),
		baddr:  newBlockAddrTable(),
		span:   span,
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) peek() token.Token {
	return p.lx.Peek()
}

// parseModule: основной цикл верхнего уровня: пока не EOF.
func (p *Parser) parseModule() error {
	for !p.at(token.EOF) {
		if err := p.parseTopLevel(); err != nil {
			return err
		}
	}
	return nil
}

// parseTopLevel выбирает распознаватель по первому токену.
func (p *Parser) parseTopLevel() error {
	tok := p.peek()
	switch tok.Kind {
	case token.KwDeclare:
		return p.parseDeclare()
	case token.KwDefine:
		return p.parseDefine()
	case token.KwModule:
		return p.parseModuleAsm()
	case token.KwTarget:
		return p.parseTargetDefinition()
	case token.KwDeplibs:
		return p.parseDepLibs()
	case token.LocalVarID:
		return p.parseUnnamedType()
	case token.LocalVar:
		return p.parseNamedType()
	case token.GlobalID:
		return p.parseUnnamedGlobal()
	case token.GlobalVar:
		return p.parseNamedGlobal()
	case token.Exclaim:
		return p.parseStandaloneMetadata()
	case token.MetadataVar:
		return p.parseNamedMetadata()
	case token.KwAttributes:
		return p.parseAttributeGroup()
	case token.Invalid:
		return p.lexError(tok)
	}
	if _, ok := linkageKinds[tok.Kind]; ok || p.atOr(globalPrefixKinds...) {
		return p.parseUnnamedGlobal()
	}
	return p.failAt(diag.SynUnexpectedToken, tok.Span, "expected top-level entity")
}

// failAt builds the error, reports it once and returns it.
func (p *Parser) failAt(code diag.Code, sp source.Span, msg string) error {
	diag.ReportError(p.opts.Reporter, code, sp, msg).Emit()
	return newError(code, sp, msg)
}

func (p *Parser) failf(code diag.Code, sp source.Span, format string, args ...any) error {
	return p.failAt(code, sp, fmt.Sprintf(format, args...))
}

// tokError reports at the current token.
func (p *Parser) tokError(code diag.Code, msg string) error {
	tok := p.peek()
	if tok.Kind == token.Invalid {
		return p.lexError(tok)
	}
	return p.failAt(code, p.getDiagnosticSpan(), msg)
}

// lexError returns the lexer's own diagnostic for an Invalid token.
func (p *Parser) lexError(tok token.Token) error {
	if d, ok := p.lexErr.First(); ok {
		return newError(d.Code, d.Primary, d.Message)
	}
	return p.failAt(diag.SynUnexpectedToken, tok.Span, "invalid token")
}
