package ir

import (
	"errors"
	"fmt"
)

// Verify checks module invariants the reader guarantees on success.
// Returns every violation joined into one error.
func Verify(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, g := range m.Vars {
		if g.Init != nil {
			if err := verifyOperand(g.Init, map[Value]bool{}); err != nil {
				errs = append(errs, fmt.Errorf("global %s: %w", displayName('@', g.Name, g.Numbered), err))
			}
		}
	}
	for _, a := range m.Aliases {
		if err := verifyOperand(a.Aliasee, map[Value]bool{}); err != nil {
			errs = append(errs, fmt.Errorf("alias %s: %w", displayName('@', a.Name, a.Numbered), err))
		}
	}
	for _, f := range m.Funcs {
		if err := verifyFunc(f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", displayName('@', f.Name, f.Numbered), err))
		}
	}
	if err := verifyMetadata(m); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func displayName(sigil byte, name string, numbered bool) string {
	if numbered {
		return string(sigil) + "<unnamed>"
	}
	return QuoteName(sigil, name)
}

func verifyFunc(f *Function) error {
	var errs []error

	// 1. Блоки завершены ровно одним терминатором
	for bi, b := range f.Blocks {
		if len(b.Instrs) == 0 {
			errs = append(errs, fmt.Errorf("block %d is empty", bi))
			continue
		}
		for ii, in := range b.Instrs {
			last := ii == len(b.Instrs)-1
			if in.Op.IsTerminator() != last {
				errs = append(errs, fmt.Errorf("block %d: terminator misplaced at instruction %d", bi, ii))
			}
			if in.Parent != b {
				errs = append(errs, fmt.Errorf("block %d: instruction %d has a stale parent", bi, ii))
			}
		}
	}

	// 2. Операнды определены и не являются заглушками
	for bi, b := range f.Blocks {
		for ii, in := range b.Instrs {
			for oi, op := range in.Ops {
				if op == nil {
					errs = append(errs, fmt.Errorf("block %d, instruction %d: operand %d is nil", bi, ii, oi))
					continue
				}
				if err := verifyOperand(op, map[Value]bool{}); err != nil {
					errs = append(errs, fmt.Errorf("block %d, instruction %d: operand %d: %w", bi, ii, oi, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// verifyOperand looks through constant operands for surviving placeholders.
func verifyOperand(v Value, seen map[Value]bool) error {
	if seen[v] {
		return nil
	}
	seen[v] = true
	switch x := v.(type) {
	case *Forward:
		return fmt.Errorf("unresolved placeholder %s", x.Ref)
	case *ConstAggregate, *ConstExpr, *BlockAddress:
		for _, op := range x.(Operander).Operands() {
			if op == nil {
				return errors.New("nil constant operand")
			}
			if err := verifyOperand(op, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

func verifyMetadata(m *Module) error {
	var errs []error
	for _, id := range m.MD.Temporaries() {
		errs = append(errs, fmt.Errorf("metadata node %d was never defined", id))
	}
	for i := 1; i <= m.MD.Len(); i++ {
		n := m.MD.Node(MDID(i))
		for _, op := range n.Ops {
			if op.Kind == MDOpValue {
				if op.Value == nil {
					errs = append(errs, fmt.Errorf("metadata node %d: nil value operand", i))
				} else if err := verifyOperand(op.Value, map[Value]bool{}); err != nil {
					errs = append(errs, fmt.Errorf("metadata node %d: %w", i, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}
