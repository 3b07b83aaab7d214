package classfile

import "fmt"

// Tag identifies the kind of a constant-pool entry.
type Tag uint8

const (
	TagUTF8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// Method handle reference kinds.
const (
	RefGetField         uint8 = 1
	RefGetStatic        uint8 = 2
	RefPutField         uint8 = 3
	RefPutStatic        uint8 = 4
	RefInvokeVirtual    uint8 = 5
	RefInvokeStatic     uint8 = 6
	RefInvokeSpecial    uint8 = 7
	RefNewInvokeSpecial uint8 = 8
	RefInvokeInterface  uint8 = 9
)

type tagInfo struct {
	name string
	// size of the entry body after the tag byte; -1 when length prefixed.
	size int
}

var tags = [...]tagInfo{
	TagUTF8:               {"Utf8", -1},
	TagInteger:            {"Integer", 4},
	TagFloat:              {"Float", 4},
	TagLong:               {"Long", 8},
	TagDouble:             {"Double", 8},
	TagClass:              {"Class", 2},
	TagString:             {"String", 2},
	TagFieldref:           {"Fieldref", 4},
	TagMethodref:          {"Methodref", 4},
	TagInterfaceMethodref: {"InterfaceMethodref", 4},
	TagNameAndType:        {"NameAndType", 4},
	TagMethodHandle:       {"MethodHandle", 3},
	TagMethodType:         {"MethodType", 2},
	TagDynamic:            {"Dynamic", 4},
	TagInvokeDynamic:      {"InvokeDynamic", 4},
	TagModule:             {"Module", 2},
	TagPackage:            {"Package", 2},
}

// Valid reports whether t is a known constant-pool tag.
func (t Tag) Valid() bool {
	return int(t) < len(tags) && tags[t].name != ""
}

// Slots returns the number of pool indexes an entry occupies.
func (t Tag) Slots() int {
	if t == TagLong || t == TagDouble {
		return 2
	}

	return 1
}

func (t Tag) String() string {
	if t.Valid() {
		return tags[t].name
	}

	return fmt.Sprintf("Tag(%d)", uint8(t))
}
