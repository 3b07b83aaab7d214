package transform_test

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"class-migrator/internal/asm"
	"class-migrator/internal/classfile"
	"class-migrator/internal/mapping"
	"class-migrator/internal/transform"
)

// TestGolden runs each testdata archive through a session in file order.
// config.yaml configures the session, every other file except want is an
// input resource, and files named *.class.yaml are assembled first.
func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txtar")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".txtar"), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			require.NoError(t, err)

			var (
				config, want []byte
				inputs       []transform.Resource
			)

			for _, f := range ar.Files {
				switch {
				case f.Name == "config.yaml":
					config = f.Data
				case f.Name == "want":
					want = f.Data
				case strings.HasSuffix(f.Name, ".class.yaml"):
					data, err := asm.AssembleYAML(f.Data)
					require.NoError(t, err, f.Name)

					inputs = append(inputs, transform.Resource{Name: strings.TrimSuffix(f.Name, ".yaml"), Data: data})
				default:
					inputs = append(inputs, transform.Resource{Name: f.Name, Data: f.Data})
				}
			}

			s := sessionFromConfig(t, config)

			var buf bytes.Buffer
			for _, res := range inputs {
				out, err := s.Transform(res)
				describe(t, &buf, res, out, err)
			}

			for _, w := range s.Warnings().Warnings {
				fmt.Fprintf(&buf, "warning %s %s %s\n", w.Code, w.Subject, w.Detail)
			}

			cmp(t, buf.Bytes(), want)
		})
	}
}

func sessionFromConfig(t *testing.T, config []byte) *transform.Session {
	t.Helper()

	cfg, err := mapping.Parse(config)
	require.NoError(t, err)

	table, err := cfg.Table()
	require.NoError(t, err)

	s, err := transform.NewSession(table, transform.OptionsFromConfig(cfg))
	require.NoError(t, err)

	return s
}

// describe writes a readable account of one transform to buf.
func describe(t *testing.T, buf *bytes.Buffer, in transform.Resource, out []transform.Resource, err error) {
	t.Helper()

	switch {
	case err != nil:
		kind := err.Error()
		for _, sentinel := range []error{classfile.ErrMalformedFormat, classfile.ErrCapacityExceeded} {
			if errors.Is(err, sentinel) {
				kind = sentinel.Error()
			}
		}

		fmt.Fprintf(buf, "%s: error: %s\n", in.Name, kind)

		return
	case len(out) == 0:
		fmt.Fprintf(buf, "%s: unchanged\n", in.Name)

		return
	}

	fmt.Fprintf(buf, "%s -> %s\n", in.Name, out[0].Name)

	if strings.HasSuffix(out[0].Name, ".class") {
		describeClass(t, buf, out[0].Data)
	} else {
		for _, line := range strings.Split(strings.TrimSuffix(string(out[0].Data), "\n"), "\n") {
			fmt.Fprintf(buf, "  | %s\n", line)
		}
	}

	for _, extra := range out[1:] {
		_, err := classfile.Parse(extra.Data)
		require.NoError(t, err, extra.Name)

		fmt.Fprintf(buf, "  + %s\n", extra.Name)
	}
}

// describeClass lists the distinct UTF-8 constants of a class and the
// method invocations that redirects can produce.
func describeClass(t *testing.T, buf *bytes.Buffer, data []byte) {
	t.Helper()

	v, err := classfile.Parse(data)
	require.NoError(t, err)

	var utf8s []string
	for i := 1; i < v.Count(); i++ {
		if v.Tag(i) != classfile.TagUTF8 {
			continue
		}

		s, err := v.UTF8(i)
		require.NoError(t, err)

		utf8s = append(utf8s, string(s))
	}

	slices.Sort(utf8s)

	for _, s := range slices.Compact(utf8s) {
		fmt.Fprintf(buf, "  utf8 %s\n", s)
	}

	for _, m := range v.Methods() {
		code := v.Code(m)
		if code == nil {
			continue
		}

		name, _, err := v.MethodName(m)
		require.NoError(t, err)

		err = classfile.Walk(code, func(in classfile.Instruction) error {
			if in.Op != classfile.Invokestatic && in.Op != classfile.Invokevirtual {
				return nil
			}

			ref, err := v.Ref(int(in.Operand(code)))
			if err != nil {
				return err
			}

			fmt.Fprintf(buf, "  invoke %s pc %d %s %s\n", name, in.PC, in.Op, ref)

			return nil
		})
		require.NoError(t, err)
	}
}

func cmp(t *testing.T, have, want []byte) {
	t.Helper()

	if !bytes.Equal(trimSpace(have), trimSpace(want)) {
		t.Errorf("have:\n%s\nwant:\n%s", have, want)
	}
}

// trimSpace drops trailing spaces on each line and trailing blank lines.
func trimSpace(b []byte) []byte {
	lines := bytes.Split(b, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, " \t")
	}

	return bytes.TrimRight(bytes.Join(lines, []byte("\n")), "\n")
}
