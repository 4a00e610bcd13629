package witlayout

import (
	"math"
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/typelayout/errors"
	"github.com/wippyai/typelayout/layout"
)

// Info summarizes the layout of a WIT type.
type Info struct {
	FieldOffs map[string]uint32 // records only
	Fields    []FieldInfo       // records and tuples
	Size      uint32
	Align     uint32
}

// FieldInfo is the placement of one record field or tuple element.
type FieldInfo struct {
	Name   string
	Type   string
	Offset uint32
	Size   uint32
	Align  uint32
}

type fieldLister interface {
	NumFields() int
	FieldOffset(index int) uintptr
	FieldDescriptor(index int) layout.Descriptor
}

func infoOf(t wit.Type, d layout.Descriptor) (Info, error) {
	var info Info
	var ok bool
	if info.Size, ok = toU32(d.Size()); !ok {
		return Info{}, tooLarge(t, "size", d.Size())
	}
	if info.Align, ok = toU32(d.Alignment()); !ok {
		return Info{}, tooLarge(t, "alignment", d.Alignment())
	}

	td, ok := t.(*wit.TypeDef)
	if !ok {
		return info, nil
	}
	c, ok := d.(fieldLister)
	if !ok {
		return info, nil
	}

	var names []string
	switch kind := resolveAlias(td).Kind.(type) {
	case *wit.Record:
		names = make([]string, len(kind.Fields))
		for i, f := range kind.Fields {
			names[i] = f.Name
		}
		info.FieldOffs = make(map[string]uint32, len(names))
	case *wit.Tuple:
		names = make([]string, len(kind.Types))
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
	default:
		return info, nil
	}

	// Every field ends within the composite, so its offset and size fit
	// wherever the composite's size does.
	info.Fields = make([]FieldInfo, c.NumFields())
	for i := range info.Fields {
		fd := c.FieldDescriptor(i)
		info.Fields[i] = FieldInfo{
			Name:   names[i],
			Type:   DescriptorName(fd),
			Offset: uint32(c.FieldOffset(i)),
			Size:   uint32(fd.Size()),
			Align:  uint32(fd.Alignment()),
		}
		if info.FieldOffs != nil {
			info.FieldOffs[names[i]] = info.Fields[i].Offset
		}
	}
	return info, nil
}

func toU32(v uintptr) (uint32, bool) {
	if uint64(v) > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

func tooLarge(t wit.Type, what string, v uintptr) error {
	name := KindName(t)
	if td, ok := t.(*wit.TypeDef); ok && td.Name != nil {
		name = *td.Name
	}
	return errors.New(errors.PhaseDeclare, errors.KindOverflow).
		WitType(name).
		Value(v).
		Detail("%s exceeds the 32-bit address space", what).
		Build()
}

// DescriptorName returns a short display name for a descriptor built by a
// Calculator.
func DescriptorName(d layout.Descriptor) string {
	switch d := d.(type) {
	case *layout.Composite[Record]:
		return "record"
	case *layout.Composite[Tuple]:
		return "tuple"
	case *layout.Composite[Variant]:
		return "variant"
	case interface{ TypeName() string }:
		return d.TypeName()
	default:
		return "?"
	}
}

// KindName returns the WIT keyword of t, e.g. "record" or "u32".
func KindName(t wit.Type) string {
	switch typ := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		switch kind := typ.Kind.(type) {
		case *wit.Record:
			return "record"
		case *wit.Tuple:
			return "tuple"
		case *wit.Variant:
			return "variant"
		case *wit.Enum:
			return "enum"
		case *wit.Flags:
			return "flags"
		case *wit.Option:
			return "option"
		case *wit.Result:
			return "result"
		case *wit.List:
			return "list"
		case *wit.Own:
			return "own"
		case *wit.Borrow:
			return "borrow"
		case wit.Type:
			return KindName(kind)
		}
	}
	return "unknown"
}
