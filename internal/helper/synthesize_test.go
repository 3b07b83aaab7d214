package helper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-migrator/internal/asm"
	"class-migrator/internal/classfile"
	"class-migrator/internal/mapping"
	"class-migrator/internal/redirect"
)

func entries(pairs ...string) []mapping.Entry {
	out := make([]mapping.Entry, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, mapping.Entry{From: []byte(pairs[i]), To: []byte(pairs[i+1])})
	}

	return out
}

func TestTemplate(t *testing.T) {
	data, err := Template()
	require.NoError(t, err)

	v, err := classfile.Parse(data)
	require.NoError(t, err)

	name, err := v.ThisClassName()
	require.NoError(t, err)
	assert.Equal(t, TemplateName, string(name))
	assert.Equal(t, uint16(49), v.Major)

	for _, target := range redirect.Catalogue() {
		m, ok := v.FindMethod(target.Name, target.HelperDescriptor())
		if assert.True(t, ok, "no forwarding method for %s", target) {
			assert.Equal(t, uint16(0x0009), m.AccessFlags, "%s must be public static", target)
		}
	}

	_, ok := v.FindMethod("lookup", "(Ljava/lang/String;)Ljava/lang/String;")
	assert.True(t, ok)
}

func TestTemplate_LookupAppliesOneEntry(t *testing.T) {
	tpl, err := loadTemplate()
	require.NoError(t, err)

	v := tpl.view
	m, ok := v.FindMethod(lookupName, lookupDesc)
	require.True(t, ok)

	var (
		calls []string
		after []string
		prev  string
	)

	code := v.Code(m)
	err = classfile.Walk(code, func(in classfile.Instruction) error {
		if prev == "replace" {
			after = append(after, in.Op.String())
		}

		prev = ""

		if in.Op == classfile.Invokevirtual {
			ref, err := v.Ref(int(in.Operand(code)))
			if err != nil {
				return err
			}

			calls = append(calls, ref.Name)
			prev = ref.Name
		}

		return nil
	})
	require.NoError(t, err)

	// the name is tested with contains and the first replacement returned
	assert.Equal(t, []string{"contains", "replace"}, calls)
	assert.Equal(t, []string{"areturn"}, after)
}

func TestSynthesize(t *testing.T) {
	const name = "jakarta/persistence/MigrationHelper"

	tpl, err := loadTemplate()
	require.NoError(t, err)

	c, err := Synthesize(name, entries(
		"javax/persistence", "jakarta/persistence",
		"javax.persistence", "jakarta.persistence",
		"javax/persistence", "jakarta/persistence",
	))
	require.NoError(t, err)

	assert.Equal(t, name, c.Name)
	assert.Equal(t, name+".class", c.Resource())
	assert.Len(t, c.Entries, 2, "duplicates are dropped")

	v, err := classfile.Parse(c.Bytes)
	require.NoError(t, err)

	this, err := v.ThisClassName()
	require.NoError(t, err)
	assert.Equal(t, name, string(this))

	for i := 1; i < v.Count(); i++ {
		if v.Tag(i) == classfile.TagUTF8 {
			s, err := v.UTF8(i)
			require.NoError(t, err)
			assert.NotContains(t, string(s), TemplateName)
		}
	}

	clinit, ok := v.FindMethod("<clinit>", "()V")
	require.True(t, ok)

	orig := tpl.view.Code(tpl.view.Method(tpl.clinit))
	code := v.Code(clinit)
	require.Len(t, code, len(orig)+2*spliceLength)

	// the seed call stays, followed by the two expansions
	assert.Equal(t, orig[:tpl.seed+3], code[:tpl.seed+3])
	assert.Equal(t, orig[tpl.seed+3:], code[tpl.seed+3+2*spliceLength:])

	var loaded []string

	err = classfile.Walk(code[tpl.seed+3:tpl.seed+3+2*spliceLength], func(in classfile.Instruction) error {
		sub := code[tpl.seed+3:]

		switch in.Op {
		case classfile.LdcW:
			s, err := v.StringValue(int(in.Operand(sub)))
			if err != nil {
				return err
			}

			loaded = append(loaded, string(s))
		case classfile.Invokestatic:
			ref, err := v.Ref(int(in.Operand(sub)))
			if err != nil {
				return err
			}

			assert.Equal(t, name, ref.Class)
			assert.Equal(t, putName, ref.Name)
		default:
			return fmt.Errorf("unexpected %s", in.Op)
		}

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"javax/persistence", "jakarta/persistence",
		"javax.persistence", "jakarta.persistence",
	}, loaded)
}

func TestSynthesize_StaticInitializer(t *testing.T) {
	c, err := Synthesize("a/b/MigrationHelper", entries("javax/el", "jakarta/el", "javax.el", "jakarta.el"))
	require.NoError(t, err)

	v, err := classfile.Parse(c.Bytes)
	require.NoError(t, err)

	clinit, ok := v.FindMethod("<clinit>", "()V")
	require.True(t, ok)
	assert.Equal(t, uint16(3), v.U16(clinit.Code.MaxStack))

	var (
		ops    []string
		loaded []string
	)

	code := v.Code(clinit)
	err = classfile.Walk(code, func(in classfile.Instruction) error {
		ops = append(ops, in.Op.String())

		switch in.Op {
		case classfile.LdcW:
			s, err := v.StringValue(int(in.Operand(code)))
			if err != nil {
				return err
			}

			loaded = append(loaded, string(s))
		case classfile.Invokestatic:
			ref, err := v.Ref(int(in.Operand(code)))
			if err != nil {
				return err
			}

			assert.Equal(t, "a/b/MigrationHelper", ref.Class)

			if _, ok := v.FindMethod(ref.Name, ref.Descriptor); !ok {
				return fmt.Errorf("pc %d calls undeclared %s", in.PC, ref)
			}
		}

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"new", "dup", "invokespecial", "putstatic",
		"invokestatic",
		"ldc_w", "ldc_w", "invokestatic",
		"ldc_w", "ldc_w", "invokestatic",
		"pop", "return",
	}, ops)
	assert.Equal(t, []string{"javax/el", "jakarta/el", "javax.el", "jakarta.el"}, loaded)
}

func TestIsGenerated(t *testing.T) {
	tpl, err := loadTemplate()
	require.NoError(t, err)
	assert.True(t, IsGenerated(tpl.view))

	c, err := Synthesize("a/b/MigrationHelper", entries("javax/el", "jakarta/el"))
	require.NoError(t, err)

	v, err := classfile.Parse(c.Bytes)
	require.NoError(t, err)
	assert.True(t, IsGenerated(v))

	user, err := asm.AssembleYAML([]byte(strings.Join([]string{
		"name: a/b/MigrationHelper",
		"methods:",
		"  - access: 0x1",
		"    name: lookup",
		"    descriptor: (Ljava/lang/String;)Ljava/lang/String;",
		"    max_locals: 2",
		"    max_stack: 1",
		"    code: |",
		"      aload_1",
		"      areturn",
	}, "\n")))
	require.NoError(t, err)

	v, err = classfile.Parse(user)
	require.NoError(t, err)
	assert.False(t, IsGenerated(v))
}

func TestSynthesize_NoEntries(t *testing.T) {
	tpl, err := loadTemplate()
	require.NoError(t, err)

	c, err := Synthesize("a/MigrationHelper", nil)
	require.NoError(t, err)

	v, err := classfile.Parse(c.Bytes)
	require.NoError(t, err)
	assert.Equal(t, tpl.view.Count(), v.Count())
	assert.Len(t, c.Bytes, len(tpl.data)-len(TemplateName)+len("a/MigrationHelper"))
}

func TestSynthesize_DefaultPackage(t *testing.T) {
	c, err := Synthesize("MigrationHelper", entries("a/b", "c/d"))
	require.NoError(t, err)

	v, err := classfile.Parse(c.Bytes)
	require.NoError(t, err)

	this, err := v.ThisClassName()
	require.NoError(t, err)
	assert.Equal(t, "MigrationHelper", string(this))
}

func TestSynthesize_TooManyEntries(t *testing.T) {
	var many []mapping.Entry
	for i := 0; i < 8000; i++ {
		many = append(many, mapping.Entry{From: []byte(fmt.Sprintf("a%d/", i)), To: []byte(fmt.Sprintf("b%d/", i))})
	}

	_, err := Synthesize("a/MigrationHelper", many)
	assert.ErrorIs(t, err, classfile.ErrCapacityExceeded)
}

func TestBuildTemplate_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"not yaml", "name: ["},
		{"wrong name", "name: other/Name\n"},
		{"no static initializer", "name: " + TemplateName + "\n"},
		{"no putAsMap", strings.Join([]string{
			"name: " + TemplateName,
			"methods:",
			"  - access: 0x8",
			"    name: <clinit>",
			"    descriptor: ()V",
			"    code: return",
		}, "\n")},
		{"no seed call", strings.Join([]string{
			"name: " + TemplateName,
			"methods:",
			"  - access: 0x8",
			"    name: <clinit>",
			"    descriptor: ()V",
			"    code: return",
			"  - access: 0xA",
			"    name: " + putName,
			"    descriptor: " + putDesc,
			"    max_locals: 3",
			"    max_stack: 1",
			"    code: |",
			"      aload_0",
			"      areturn",
		}, "\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildTemplate([]byte(tt.src))

			var te *TemplateError
			assert.ErrorAs(t, err, &te)
		})
	}
}
