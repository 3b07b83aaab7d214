package helper

import (
	_ "embed"
	"fmt"
	"sync"

	"class-migrator/internal/asm"
	"class-migrator/internal/classfile"
)

// TemplateName is the internal name of the template class.
const TemplateName = "migration/template/MigrationHelper"

// Members of the template referenced by the synthesizer.
const (
	seedName     = "mappings"
	seedDesc     = "()Ljava/util/Map;"
	putName      = "putAsMap"
	putDesc      = "(Ljava/util/Map;Ljava/lang/String;Ljava/lang/String;)Ljava/util/Map;"
	lookupName   = "lookup"
	lookupDesc   = "(Ljava/lang/String;)Ljava/lang/String;"
	initName     = "<clinit>"
	initDesc     = "()V"
	spliceLength = 9
	accStatic    = 0x0008
)

//go:embed template.yaml
var templateYAML []byte

// TemplateError reports a missing or broken helper template. It is an
// internal failure that no input can cause or recover.
type TemplateError struct {
	Err error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("helper template: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TemplateError) Unwrap() error {
	return e.Err
}

type template struct {
	data []byte
	view *classfile.View
	// clinit is the method index of the static initializer and seed the pc
	// of the seed call.
	clinit int
	seed   int
}

var (
	templateOnce sync.Once
	loaded       *template
	loadErr      error
)

// loadTemplate assembles the embedded template once. The result is shared
// read-only.
func loadTemplate() (*template, error) {
	templateOnce.Do(func() {
		loaded, loadErr = buildTemplate(templateYAML)
	})

	return loaded, loadErr
}

func buildTemplate(src []byte) (*template, error) {
	if len(src) == 0 {
		return nil, &TemplateError{Err: fmt.Errorf("template is empty")}
	}

	data, err := asm.AssembleYAML(src)
	if err != nil {
		return nil, &TemplateError{Err: err}
	}

	v, err := classfile.Parse(data)
	if err != nil {
		return nil, &TemplateError{Err: err}
	}

	if name, err := v.ThisClassName(); err != nil || string(name) != TemplateName {
		return nil, &TemplateError{Err: fmt.Errorf("template class is %q, want %q", name, TemplateName)}
	}

	t := &template{data: data, view: v, seed: -1}

	m, ok := v.FindMethod(initName, initDesc)
	if !ok || m.Code == nil {
		return nil, &TemplateError{Err: fmt.Errorf("template has no static initializer")}
	}

	t.clinit = m.Index

	// Nothing in the template calls putAsMap, so its Methodref is added to
	// the pool tail of each synthesized class.
	if put, ok := v.FindMethod(putName, putDesc); !ok || put.AccessFlags&accStatic == 0 {
		return nil, &TemplateError{Err: fmt.Errorf("template has no static %s%s", putName, putDesc)}
	}

	seed := v.FindRef(classfile.TagMethodref, TemplateName, seedName, seedDesc)
	if seed == 0 {
		return nil, &TemplateError{Err: fmt.Errorf("template lacks a %s reference", seedName)}
	}

	code := v.Code(m)

	err = classfile.Walk(code, func(in classfile.Instruction) error {
		if in.Op != classfile.Invokestatic || int(in.Operand(code)) != seed {
			return nil
		}

		if t.seed >= 0 {
			return fmt.Errorf("more than one seed call")
		}

		t.seed = in.PC

		return nil
	})
	if err != nil {
		return nil, &TemplateError{Err: err}
	}

	if t.seed < 0 {
		return nil, &TemplateError{Err: fmt.Errorf("static initializer has no seed call")}
	}

	return t, nil
}

// Template returns the assembled template class.
func Template() ([]byte, error) {
	t, err := loadTemplate()
	if err != nil {
		return nil, err
	}

	return t.data, nil
}

// IsGenerated reports whether v is a helper class synthesized from the
// template: it declares the static putAsMap and lookup methods.
func IsGenerated(v *classfile.View) bool {
	for _, sig := range [...][2]string{{putName, putDesc}, {lookupName, lookupDesc}} {
		m, ok := v.FindMethod(sig[0], sig[1])
		if !ok || m.AccessFlags&accStatic == 0 {
			return false
		}
	}

	return true
}
