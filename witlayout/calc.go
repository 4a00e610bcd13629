package witlayout

import (
	"fmt"
	"strconv"
	"sync"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/typelayout/errors"
	"github.com/wippyai/typelayout/internal/align"
	"github.com/wippyai/typelayout/layout"
)

// Marker types for the composites built from WIT types.
type (
	Record  struct{}
	Tuple   struct{}
	Variant struct{}
)

// Slice is the in-memory form of a string or list: a guest pointer and an
// element count.
type Slice struct {
	Ptr uint32
	Len uint32
}

// Handle is the in-memory form of an own or borrow resource handle.
type Handle uint32

var (
	boolDesc   = layout.FixedOf[bool](1, 1).Named("bool")
	u8Desc     = layout.FixedOf[uint8](1, 1).Named("u8")
	s8Desc     = layout.FixedOf[int8](1, 1).Named("s8")
	u16Desc    = layout.FixedOf[uint16](2, 2).Named("u16")
	s16Desc    = layout.FixedOf[int16](2, 2).Named("s16")
	u32Desc    = layout.FixedOf[uint32](4, 4).Named("u32")
	s32Desc    = layout.FixedOf[int32](4, 4).Named("s32")
	u64Desc    = layout.FixedOf[uint64](8, 8).Named("u64")
	s64Desc    = layout.FixedOf[int64](8, 8).Named("s64")
	f32Desc    = layout.FixedOf[float32](4, 4).Named("f32")
	f64Desc    = layout.FixedOf[float64](8, 8).Named("f64")
	charDesc   = layout.FixedOf[rune](4, 4).Named("char")
	stringDesc = layout.FixedOf[Slice](8, 4).Named("string")
	listDesc   = layout.FixedOf[Slice](8, 4).Named("list")
	handleDesc = layout.FixedOf[Handle](4, 4).Named("handle")
)

// Calculator derives and caches layouts of WIT types.
type Calculator struct {
	cache sync.Map // *wit.TypeDef -> layout.Descriptor
}

// NewCalculator returns an empty calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Descriptor returns the layout descriptor of t.
func (c *Calculator) Descriptor(t wit.Type) (layout.Descriptor, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return boolDesc, nil
	case wit.U8:
		return u8Desc, nil
	case wit.S8:
		return s8Desc, nil
	case wit.U16:
		return u16Desc, nil
	case wit.S16:
		return s16Desc, nil
	case wit.U32:
		return u32Desc, nil
	case wit.S32:
		return s32Desc, nil
	case wit.U64:
		return u64Desc, nil
	case wit.S64:
		return s64Desc, nil
	case wit.F32:
		return f32Desc, nil
	case wit.F64:
		return f64Desc, nil
	case wit.Char:
		return charDesc, nil
	case wit.String:
		return stringDesc, nil
	case *wit.TypeDef:
		return c.typeDef(typ)
	case nil:
		return nil, errors.NilPointer(errors.PhaseDeclare, nil, "wit.Type")
	default:
		return nil, unsupported(t)
	}
}

// Calculate returns the size, alignment and field offsets of t.
func (c *Calculator) Calculate(t wit.Type) (Info, error) {
	d, err := c.Descriptor(t)
	if err != nil {
		return Info{}, err
	}
	return infoOf(t, d)
}

// Record returns the composite of a record type definition.
func (c *Calculator) Record(t *wit.TypeDef) (*layout.Composite[Record], error) {
	d, err := c.Descriptor(t)
	if err != nil {
		return nil, err
	}
	r, ok := d.(*layout.Composite[Record])
	if !ok {
		return nil, errors.New(errors.PhaseDeclare, errors.KindTypeMismatch).
			WitType(typeDefName(t)).
			Detail("not a record").
			Build()
	}
	return r, nil
}

// RecordField returns a handle to the named field of a record, which must
// be laid out as a V.
func RecordField[V any](c *Calculator, t *wit.TypeDef, name string) (layout.FieldRef[Record, V], error) {
	r, err := c.Record(t)
	if err != nil {
		return layout.FieldRef[Record, V]{}, err
	}
	for i, f := range recordOf(t).Fields {
		if f.Name == name {
			return layout.LookupField[V](r, i)
		}
	}
	return layout.FieldRef[Record, V]{}, errors.NotFound(errors.PhaseAccess, "field", name)
}

func (c *Calculator) typeDef(t *wit.TypeDef) (layout.Descriptor, error) {
	if cached, ok := c.cache.Load(t); ok {
		return cached.(layout.Descriptor), nil
	}

	var (
		d   layout.Descriptor
		err error
	)

	switch kind := t.Kind.(type) {
	case *wit.Record:
		d, err = c.record(kind)
	case *wit.Tuple:
		d, err = c.tuple(kind.Types)
	case *wit.Variant:
		d, err = c.variant(kind)
	case *wit.Enum:
		d = discriminant(len(kind.Cases))
	case *wit.Flags:
		d = flags(len(kind.Flags))
	case *wit.Option:
		d, err = c.taggedUnion(2, kind.Type)
	case *wit.Result:
		d, err = c.taggedUnion(2, kind.OK, kind.Err)
	case *wit.List:
		d = listDesc
	case *wit.Own, *wit.Borrow:
		d = handleDesc
	case wit.Type:
		d, err = c.Descriptor(kind)
	default:
		err = unsupported(kind)
	}
	if err != nil {
		return nil, withWitType(err, typeDefName(t))
	}

	actual, _ := c.cache.LoadOrStore(t, d)
	return actual.(layout.Descriptor), nil
}

func (c *Calculator) record(r *wit.Record) (layout.Descriptor, error) {
	fields := make([]layout.Descriptor, len(r.Fields))
	for i, f := range r.Fields {
		d, err := c.Descriptor(f.Type)
		if err != nil {
			return nil, withPath(err, f.Name)
		}
		fields[i] = d
	}
	return layout.NewComposite[Record](fields...)
}

func (c *Calculator) tuple(types []wit.Type) (layout.Descriptor, error) {
	fields := make([]layout.Descriptor, len(types))
	for i, typ := range types {
		d, err := c.Descriptor(typ)
		if err != nil {
			return nil, withPath(err, strconv.Itoa(i))
		}
		fields[i] = d
	}
	return layout.NewComposite[Tuple](fields...)
}

func (c *Calculator) variant(v *wit.Variant) (layout.Descriptor, error) {
	if len(v.Cases) == 0 {
		return layout.NewComposite[Variant]()
	}
	payloads := make([]wit.Type, len(v.Cases))
	for i, cs := range v.Cases {
		payloads[i] = cs.Type
	}
	return c.taggedUnion(len(v.Cases), payloads...)
}

// taggedUnion lays out a discriminant for numCases followed by a span large
// enough for every non-nil payload.
func (c *Calculator) taggedUnion(numCases int, payloads ...wit.Type) (layout.Descriptor, error) {
	size, alignment := uintptr(0), uintptr(1)
	for _, p := range payloads {
		if p == nil {
			continue
		}
		d, err := c.Descriptor(p)
		if err != nil {
			return nil, err
		}
		size = max(size, d.Size())
		alignment = max(alignment, d.Alignment())
	}
	payload := layout.Opaque(align.Up(size, alignment), alignment).Named("payload")
	return layout.NewComposite[Variant](discriminant(numCases), payload)
}

// discriminant returns the smallest unsigned integer holding numCases tags.
func discriminant(numCases int) layout.Descriptor {
	switch {
	case numCases <= 1<<8:
		return u8Desc
	case numCases <= 1<<16:
		return u16Desc
	default:
		return u32Desc
	}
}

func flags(n int) layout.Descriptor {
	switch {
	case n == 0:
		return layout.Opaque(0, 1).Named("flags")
	case n <= 8:
		return u8Desc
	case n <= 16:
		return u16Desc
	case n <= 32:
		return u32Desc
	case n <= 64:
		return u64Desc
	default:
		return layout.Array[uint32](u32Desc, (n+31)/32)
	}
}

// resolveAlias follows type aliases down to the defining type.
func resolveAlias(t *wit.TypeDef) *wit.TypeDef {
	for {
		next, ok := t.Kind.(*wit.TypeDef)
		if !ok {
			return t
		}
		t = next
	}
}

// recordOf returns the record definition behind t and its aliases.
func recordOf(t *wit.TypeDef) *wit.Record {
	if r, ok := resolveAlias(t).Kind.(*wit.Record); ok {
		return r
	}
	return &wit.Record{}
}

func unsupported(t any) error {
	return errors.Unsupported(errors.PhaseDeclare, fmt.Sprintf("no layout for WIT type %T", t))
}

func typeDefName(t *wit.TypeDef) string {
	if t.Name != nil {
		return *t.Name
	}
	return ""
}

// withWitType records the innermost named type an error was raised under.
func withWitType(err error, name string) error {
	if e, ok := err.(*errors.Error); ok && e.WitType == "" && name != "" {
		e.WitType = name
	}
	return err
}

// withPath prepends a field name to the error path.
func withPath(err error, field string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append([]string{field}, e.Path...)
	}
	return err
}
