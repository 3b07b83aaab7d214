package redirect

import (
	"encoding/binary"
	"fmt"

	"class-migrator/internal/classfile"
	"class-migrator/internal/diagnostic"
	"class-migrator/internal/patch"
)

// Site is one matched instruction.
type Site struct {
	Method int
	PC     int
	Op     classfile.Opcode
	// Target is the catalogue index of the called method.
	Target int
}

// Handle reports whether the site loads a method handle.
func (s Site) Handle() bool {
	return s.Op == classfile.Ldc || s.Op == classfile.LdcW
}

// Plan is the outcome of Scan for a class with at least one matched site.
type Plan struct {
	Helper string
	Sites  []Site
	// Targets lists the matched catalogue indexes in ascending order.
	Targets []int

	Code      []patch.Descriptor
	Rewrites  patch.Pairs
	Pool      []byte
	PoolCount int

	// Warnings report sites that were left in place.
	Warnings diagnostic.Diagnostics
}

// Redirected reports whether at least one site is rewritten.
func (p *Plan) Redirected() bool {
	return p != nil && len(p.Code) > 0
}

// candidates maps constant-pool indexes to catalogue indexes.
type candidates struct {
	refs    map[int]int
	handles map[int]int
}

func findCandidates(v *classfile.View) candidates {
	c := candidates{refs: map[int]int{}, handles: map[int]int{}}

	for i := 1; i < v.Count(); i++ {
		switch v.Tag(i) {
		case classfile.TagMethodref:
			if r, err := v.Ref(i); err == nil {
				if t, ok := lookup(r); ok {
					c.refs[i] = t
				}
			}
		case classfile.TagMethodHandle:
			kind, ref, err := v.MethodHandle(i)
			if err != nil || v.Tag(int(ref)) != classfile.TagMethodref {
				continue
			}

			if r, err := v.Ref(int(ref)); err == nil {
				if t, ok := lookup(r); ok && catalogue[t].RefKind() == kind {
					c.handles[i] = t
				}
			}
		}
	}

	return c
}

// Scan finds every redirect-worthy call site of v and plans its rewrite to
// the helper class helper. The plan is nil when no site matched. New
// constant-pool entries are laid out in a fixed order: the helper class,
// then per matched target in catalogue order its name, descriptor,
// NameAndType and Methodref, followed by a MethodHandle when one of its
// sites loads a handle.
func Scan(v *classfile.View, helper string) (*Plan, error) {
	cands := findCandidates(v)
	if len(cands.refs) == 0 && len(cands.handles) == 0 {
		return nil, nil
	}

	sites, err := findSites(v, cands)
	if err != nil {
		return nil, err
	}

	if len(sites) == 0 {
		return nil, nil
	}

	p := &Plan{Helper: helper, Sites: sites}

	var matched, handles [len(catalogue)]bool
	for _, s := range sites {
		matched[s.Target] = true
		handles[s.Target] = handles[s.Target] || s.Handle()
	}

	pool := classfile.NewPoolBuilder(v.Count())

	class, err := pool.ClassNamed(helper)
	if err != nil {
		return nil, fmt.Errorf("redirect: %w", err)
	}

	var refs, handleRefs [len(catalogue)]uint16

	for i, t := range catalogue {
		if !matched[i] {
			continue
		}

		p.Targets = append(p.Targets, i)

		if refs[i], err = pool.MemberNamed(classfile.TagMethodref, class, t.Name, t.HelperDescriptor()); err != nil {
			return nil, fmt.Errorf("redirect: %w", err)
		}

		if !handles[i] {
			continue
		}

		if handleRefs[i], err = pool.MethodHandle(classfile.RefInvokeStatic, refs[i]); err != nil {
			return nil, fmt.Errorf("redirect: %w", err)
		}
	}

	p.Pool = pool.Bytes()
	p.PoolCount = pool.Count()

	for _, s := range sites {
		m := v.Method(s.Method)
		code := v.Code(m)
		from := code[s.PC : s.PC+instructionSize(s.Op)]

		var to []byte

		switch s.Op {
		case classfile.Ldc:
			idx := handleRefs[s.Target]
			if idx > 0xFF {
				p.Warnings.AddWarning("ldc_index_overflow",
					fmt.Sprintf("method handle for %s lands at constant %d, out of ldc range; call site not redirected", catalogue[s.Target], idx),
					methodSubject(v, m), fmt.Sprintf("pc %d", s.PC))

				continue
			}

			to = []byte{byte(classfile.Ldc), byte(idx)}
		case classfile.LdcW:
			to = binary.BigEndian.AppendUint16([]byte{byte(classfile.LdcW)}, handleRefs[s.Target])
		default:
			to = binary.BigEndian.AppendUint16([]byte{byte(classfile.Invokestatic)}, refs[s.Target])
		}

		edit := patch.Edit{Index: p.Rewrites.Add(from, to), Offset: s.PC}

		if n := len(p.Code); n > 0 && p.Code[n-1].Target == s.Method {
			p.Code[n-1].Edits = append(p.Code[n-1].Edits, edit)
		} else {
			p.Code = append(p.Code, patch.Descriptor{Target: s.Method, Edits: []patch.Edit{edit}})
		}
	}

	return p, nil
}

func findSites(v *classfile.View, cands candidates) ([]Site, error) {
	var sites []Site

	for _, m := range v.Methods() {
		code := v.Code(m)
		if code == nil {
			continue
		}

		err := classfile.Walk(code, func(in classfile.Instruction) error {
			var (
				t  int
				ok bool
			)

			switch in.Op {
			case classfile.Invokestatic, classfile.Invokevirtual:
				t, ok = cands.refs[int(in.Operand(code))]
				ok = ok && catalogue[t].Opcode() == in.Op
			case classfile.Ldc:
				t, ok = cands.handles[int(code[in.PC+1])]
			case classfile.LdcW:
				t, ok = cands.handles[int(in.Operand(code))]
			}

			if ok {
				sites = append(sites, Site{Method: m.Index, PC: in.PC, Op: in.Op, Target: t})
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", m.Index, err)
		}
	}

	return sites, nil
}

func instructionSize(op classfile.Opcode) int {
	return op.Kind().Length()
}

func methodSubject(v *classfile.View, m classfile.Method) string {
	name, desc, err := v.MethodName(m)
	if err != nil {
		return fmt.Sprintf("method %d", m.Index)
	}

	return string(name) + string(desc)
}
