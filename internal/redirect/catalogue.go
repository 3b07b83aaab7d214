package redirect

import "class-migrator/internal/classfile"

// Target is a redirect-worthy method.
type Target struct {
	Owner      string
	Name       string
	Descriptor string
	// Virtual targets are invoked with invokevirtual; their helper method
	// takes the receiver as an extra first argument.
	Virtual bool
}

// String returns owner.name(desc).
func (t Target) String() string {
	return t.Owner + "." + t.Name + t.Descriptor
}

// HelperDescriptor returns the descriptor of the helper method forwarding
// to t.
func (t Target) HelperDescriptor() string {
	if !t.Virtual {
		return t.Descriptor
	}

	return "(L" + t.Owner + ";" + t.Descriptor[1:]
}

// RefKind returns the method handle kind referring to t.
func (t Target) RefKind() uint8 {
	if t.Virtual {
		return classfile.RefInvokeVirtual
	}

	return classfile.RefInvokeStatic
}

// Opcode returns the instruction invoking t.
func (t Target) Opcode() classfile.Opcode {
	if t.Virtual {
		return classfile.Invokevirtual
	}

	return classfile.Invokestatic
}

var catalogue = [...]Target{
	{Owner: "java/lang/Class", Name: "forName", Descriptor: "(Ljava/lang/String;)Ljava/lang/Class;"},
	{
		Owner:      "java/lang/Class",
		Name:       "forName",
		Descriptor: "(Ljava/lang/String;ZLjava/lang/ClassLoader;)Ljava/lang/Class;",
	},
	{
		Owner:      "java/lang/ClassLoader",
		Name:       "loadClass",
		Descriptor: "(Ljava/lang/String;)Ljava/lang/Class;",
		Virtual:    true,
	},
	{
		Owner:      "java/lang/ClassLoader",
		Name:       "getResource",
		Descriptor: "(Ljava/lang/String;)Ljava/net/URL;",
		Virtual:    true,
	},
	{
		Owner:      "java/lang/ClassLoader",
		Name:       "getResources",
		Descriptor: "(Ljava/lang/String;)Ljava/util/Enumeration;",
		Virtual:    true,
	},
	{
		Owner:      "java/lang/ClassLoader",
		Name:       "getResourceAsStream",
		Descriptor: "(Ljava/lang/String;)Ljava/io/InputStream;",
		Virtual:    true,
	},
}

// Catalogue returns the redirected methods in the order their constant-pool
// entries are appended.
func Catalogue() []Target {
	return append([]Target(nil), catalogue[:]...)
}

func lookup(r classfile.Ref) (int, bool) {
	for i, t := range catalogue {
		if r.Class == t.Owner && r.Name == t.Name && r.Descriptor == t.Descriptor {
			return i, true
		}
	}

	return -1, false
}
