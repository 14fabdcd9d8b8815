package serialize

import (
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/timescale/tsbs-alea/pkg/computed"
	"gopkg.in/yaml.v2"
)

// Tree is an in-memory serializer with native groups and shapes. Unlike
// Stream, Shape reports what was written, and fields may be read back in any
// order. Trees persist as YAML.
type Tree struct {
	Root  *Node
	stack []*Node
}

// Node is one group of a Tree.
type Node struct {
	Groups map[string]*Node  `yaml:"groups,omitempty"`
	Fields map[string]*Field `yaml:"fields,omitempty"`
}

// Field is one keyed array. Values are stored flat, in row-major order;
// complex numbers take two floats and operators four.
type Field struct {
	Type   string    `yaml:"type"`
	Shape  []int     `yaml:"shape,flow"`
	Floats []float64 `yaml:"floats,flow,omitempty"`
	Ints   []int64   `yaml:"ints,flow,omitempty"`
	Uints  []uint64  `yaml:"uints,flow,omitempty"`
}

var (
	_ Serializer   = (*Tree)(nil)
	_ Deserializer = (*Tree)(nil)
)

// NewTree returns an empty Tree positioned at its root group.
func NewTree() *Tree {
	root := &Node{}
	return &Tree{Root: root, stack: []*Node{root}}
}

// ReadTree parses a Tree written by WriteTo.
func ReadTree(r io.Reader) (*Tree, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	root := &Node{}
	if err := yaml.Unmarshal(b, root); err != nil {
		return nil, errors.Wrap(err, "serialize: cannot parse tree")
	}
	return &Tree{Root: root, stack: []*Node{root}}, nil
}

// WriteTo writes the tree as YAML.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	b, err := yaml.Marshal(t.Root)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Enter opens the child group name, creating it if needed. The empty name
// denotes the current group.
func (t *Tree) Enter(name string) error {
	cur := t.top()
	if name == "" {
		t.stack = append(t.stack, cur)
		return nil
	}
	child, ok := cur.Groups[name]
	if !ok {
		if cur.Groups == nil {
			cur.Groups = make(map[string]*Node)
		}
		child = &Node{}
		cur.Groups[name] = child
	}
	t.stack = append(t.stack, child)
	return nil
}

func (t *Tree) Exit() error {
	if len(t.stack) < 2 {
		return ErrUnbalancedGroup
	}
	t.stack = t.stack[:len(t.stack)-1]
	return nil
}

func (t *Tree) Shape(key string) ([]int, error) {
	f, ok := t.top().Fields[key]
	if !ok {
		return nil, errors.Wrapf(ErrKeyNotFound, "%q", key)
	}
	shape := make([]int, len(f.Shape))
	copy(shape, f.Shape)
	return shape, nil
}

func (t *Tree) WriteFloat64(key string, v NDView[float64]) error { return treeWrite(t, key, v) }

func (t *Tree) WriteComplex128(key string, v NDView[complex128]) error { return treeWrite(t, key, v) }

func (t *Tree) WriteComplexOp(key string, v NDView[computed.ComplexOp]) error {
	return treeWrite(t, key, v)
}

func (t *Tree) WriteInt64(key string, v NDView[int64]) error { return treeWrite(t, key, v) }

func (t *Tree) WriteUint64(key string, v NDView[uint64]) error { return treeWrite(t, key, v) }

func (t *Tree) ReadFloat64(key string, v NDView[float64]) error { return treeRead(t, key, v) }

func (t *Tree) ReadComplex128(key string, v NDView[complex128]) error { return treeRead(t, key, v) }

func (t *Tree) ReadComplexOp(key string, v NDView[computed.ComplexOp]) error {
	return treeRead(t, key, v)
}

func (t *Tree) ReadInt64(key string, v NDView[int64]) error { return treeRead(t, key, v) }

func (t *Tree) ReadUint64(key string, v NDView[uint64]) error { return treeRead(t, key, v) }

func (t *Tree) top() *Node {
	return t.stack[len(t.stack)-1]
}

func elementName[T Element]() string {
	var zero T
	switch any(zero).(type) {
	case float64:
		return "float64"
	case complex128:
		return "complex128"
	case computed.ComplexOp:
		return "complex_op"
	case int64:
		return "int64"
	default:
		return "uint64"
	}
}

func treeWrite[T Element](t *Tree, key string, v NDView[T]) error {
	if err := computed.CheckSize(v.Size(), len(v.Data)); err != nil {
		return errors.Wrapf(err, "write %q", key)
	}
	cur := t.top()
	if _, ok := cur.Fields[key]; ok {
		return errors.Wrapf(ErrDuplicateKey, "%q", key)
	}
	f := &Field{Type: elementName[T](), Shape: append([]int{}, v.Shape...)}
	switch data := any(v.Data).(type) {
	case []float64:
		f.Floats = append([]float64{}, data...)
	case []complex128:
		f.Floats = make([]float64, 0, 2*len(data))
		for _, c := range data {
			f.Floats = append(f.Floats, real(c), imag(c))
		}
	case []computed.ComplexOp:
		f.Floats = make([]float64, 0, 4*len(data))
		for _, o := range data {
			c := o.Components()
			f.Floats = append(f.Floats, c[:]...)
		}
	case []int64:
		f.Ints = append([]int64{}, data...)
	case []uint64:
		f.Uints = append([]uint64{}, data...)
	}
	if cur.Fields == nil {
		cur.Fields = make(map[string]*Field)
	}
	cur.Fields[key] = f
	return nil
}

func treeRead[T Element](t *Tree, key string, v NDView[T]) error {
	f, ok := t.top().Fields[key]
	if !ok {
		return errors.Wrapf(ErrKeyNotFound, "%q", key)
	}
	if want := elementName[T](); f.Type != want {
		return errors.Wrapf(ErrElementType, "%q is %s, not %s", key, f.Type, want)
	}
	if v.Data == nil {
		return nil
	}
	n := ComputeSize(f.Shape)
	if err := computed.CheckSize(n, v.Size()); err != nil {
		return errors.Wrapf(err, "read %q", key)
	}
	if err := computed.CheckSize(n, len(v.Data)); err != nil {
		return errors.Wrapf(err, "read %q", key)
	}
	switch data := any(v.Data).(type) {
	case []float64:
		if len(f.Floats) != n {
			return corrupt(key)
		}
		copy(data, f.Floats)
	case []complex128:
		if len(f.Floats) != 2*n {
			return corrupt(key)
		}
		for i := range data {
			data[i] = complex(f.Floats[2*i], f.Floats[2*i+1])
		}
	case []computed.ComplexOp:
		if len(f.Floats) != 4*n {
			return corrupt(key)
		}
		for i := range data {
			var c [4]float64
			copy(c[:], f.Floats[4*i:4*i+4])
			data[i] = computed.ComplexOpFromComponents(c)
		}
	case []int64:
		if len(f.Ints) != n {
			return corrupt(key)
		}
		copy(data, f.Ints)
	case []uint64:
		if len(f.Uints) != n {
			return corrupt(key)
		}
		copy(data, f.Uints)
	}
	return nil
}

func corrupt(key string) error {
	return errors.Errorf("serialize: field %q value count does not match its shape", key)
}
