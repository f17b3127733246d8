package core

import (
	"fmt"
	"sort"
	"strconv"
)

// ComponentID is the stable identity of a component inside a registry.
// Copies of a registry keep every ID, so IDs can be held across state forks.
type ComponentID int

// NoOwner marks a component that belongs to no player.
const NoOwner = -1

// PropertyKind tags the type held by a Value.
type PropertyKind uint8

const (
	PropertyInt PropertyKind = iota
	PropertyBool
	PropertyString
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyInt:
		return "int"
	case PropertyBool:
		return "bool"
	case PropertyString:
		return "string"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Value is a typed property value. It is a plain value type and copies freely.
type Value struct {
	kind PropertyKind
	i    int
	b    bool
	s    string
}

func IntValue(v int) Value       { return Value{kind: PropertyInt, i: v} }
func BoolValue(v bool) Value     { return Value{kind: PropertyBool, b: v} }
func StringValue(v string) Value { return Value{kind: PropertyString, s: v} }

func (v Value) Kind() PropertyKind { return v.kind }
func (v Value) Int() int           { return v.i }
func (v Value) Bool() bool         { return v.b }
func (v Value) Str() string        { return v.s }

func (v Value) String() string {
	switch v.kind {
	case PropertyInt:
		return strconv.Itoa(v.i)
	case PropertyBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

func (v Value) hashInto(h *Hasher) {
	h.Int(int(v.kind))
	switch v.kind {
	case PropertyInt:
		h.Int(v.i)
	case PropertyBool:
		h.Bool(v.b)
	default:
		h.String(v.s)
	}
}

// Component is a uniquely identified mutable game object: a figure, card,
// board cell or token. Components reference each other by ComponentID only.
type Component struct {
	id    ComponentID
	owner int
	typ   string
	name  string
	props map[string]Value
}

func (c *Component) ID() ComponentID  { return c.id }
func (c *Component) Owner() int       { return c.owner }
func (c *Component) SetOwner(p int)   { c.owner = p }
func (c *Component) Type() string     { return c.typ }
func (c *Component) Name() string     { return c.name }
func (c *Component) SetName(n string) { c.name = n }

// Property returns the value stored under key.
func (c *Component) Property(key string) (Value, bool) {
	v, ok := c.props[key]
	return v, ok
}

func (c *Component) SetProperty(key string, v Value) {
	if c.props == nil {
		c.props = make(map[string]Value)
	}
	c.props[key] = v
}

func (c *Component) DeleteProperty(key string) {
	delete(c.props, key)
}

func (c *Component) HasProperty(key string) bool {
	_, ok := c.props[key]
	return ok
}

// Int returns the integer under key, or 0 when absent or of another kind.
func (c *Component) Int(key string) int {
	v, ok := c.props[key]
	if !ok || v.kind != PropertyInt {
		return 0
	}
	return v.i
}

func (c *Component) SetInt(key string, v int) { c.SetProperty(key, IntValue(v)) }

// AddInt adds delta to the integer under key and returns the new value.
func (c *Component) AddInt(key string, delta int) int {
	n := c.Int(key) + delta
	c.SetInt(key, n)
	return n
}

func (c *Component) Bool(key string) bool {
	v, ok := c.props[key]
	return ok && v.kind == PropertyBool && v.b
}

func (c *Component) SetBool(key string, v bool) { c.SetProperty(key, BoolValue(v)) }

func (c *Component) Str(key string) string {
	v, ok := c.props[key]
	if !ok || v.kind != PropertyString {
		return ""
	}
	return v.s
}

func (c *Component) SetStr(key, v string) { c.SetProperty(key, StringValue(v)) }

// Keys returns the property keys in sorted order.
func (c *Component) Keys() []string {
	keys := make([]string, 0, len(c.props))
	for k := range c.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Component) String() string {
	return fmt.Sprintf("%s#%d(%s)", c.typ, c.id, c.name)
}

func (c *Component) copy() *Component {
	props := make(map[string]Value, len(c.props))
	for k, v := range c.props {
		props[k] = v
	}
	return &Component{id: c.id, owner: c.owner, typ: c.typ, name: c.name, props: props}
}

func (c *Component) hashInto(h *Hasher) {
	h.Int(int(c.id)).Int(c.owner).String(c.typ).String(c.name)
	for _, k := range c.Keys() {
		h.String(k)
		c.props[k].hashInto(h)
	}
}
