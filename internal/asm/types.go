package asm

// Class describes one class file.
type Class struct {
	Name  string `yaml:"name"`
	Super string `yaml:"super,omitempty"`
	// Major defaults to 49, Minor to 0.
	Major      uint16      `yaml:"major,omitempty"`
	Minor      uint16      `yaml:"minor,omitempty"`
	Access     uint16      `yaml:"access,omitempty"`
	Interfaces []string    `yaml:"interfaces,omitempty"`
	SourceFile string      `yaml:"source_file,omitempty"`
	Constants  []string    `yaml:"constants,omitempty"`
	Fields     []Field     `yaml:"fields,omitempty"`
	Methods    []Method    `yaml:"methods,omitempty"`
	Attributes []Attribute `yaml:"attributes,omitempty"`
}

// Field describes one field_info.
type Field struct {
	Access     uint16      `yaml:"access,omitempty"`
	Name       string      `yaml:"name"`
	Descriptor string      `yaml:"descriptor"`
	Attributes []Attribute `yaml:"attributes,omitempty"`
}

// Method describes one method_info. A method without Code gets no Code
// attribute.
type Method struct {
	Access     uint16      `yaml:"access,omitempty"`
	Name       string      `yaml:"name"`
	Descriptor string      `yaml:"descriptor"`
	MaxStack   uint16      `yaml:"max_stack,omitempty"`
	MaxLocals  uint16      `yaml:"max_locals,omitempty"`
	Code       string      `yaml:"code,omitempty"`
	Exceptions []Handler   `yaml:"exceptions,omitempty"`
	Attributes []Attribute `yaml:"attributes,omitempty"`
}

// Handler is one exception table entry. Start, End and Handler are labels;
// an empty Type catches everything.
type Handler struct {
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Handler string `yaml:"handler"`
	Type    string `yaml:"type,omitempty"`
}

// Attribute is copied into the class file verbatim.
type Attribute struct {
	Name string `yaml:"name"`
	// Hex is the attribute body, hex encoded.
	Hex string `yaml:"hex,omitempty"`
}

// Defaults for omitted fields.
const (
	DefaultMajor = 49
	DefaultSuper = "java/lang/Object"
)
