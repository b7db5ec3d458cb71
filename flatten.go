package plist

import "howett.net/plist/cf"

// isUniquedKind reports whether v belongs to one of the primitive kinds the
// flattener interns by value equality (§3.2 invariant 5, §4.D): String,
// Number, Real, Date, Data. Everything else — Boolean, UID, containers — is
// appended to the object list unconditionally.
func isUniquedKind(v cf.Value) bool {
	switch v.(type) {
	case cf.String, *cf.Number, *cf.Real, cf.Date, cf.Data:
		return true
	}
	return false
}

// uniquingSet buckets candidate values by Hash() and resolves collisions
// with Equal(), giving amortized O(1) lookup without requiring a structural
// hash over containers (which are never inserted here).
type uniquingSet struct {
	buckets map[uint64][]int // hash -> indices into the flattener's object list
}

func newUniquingSet() *uniquingSet {
	return &uniquingSet{buckets: make(map[uint64][]int)}
}

// find returns the object-list index of a value equal to v, if any.
func (s *uniquingSet) find(v cf.Value, list []cf.Value) (int, bool) {
	h := v.Hash()
	for _, idx := range s.buckets[h] {
		if list[idx].Equal(v) {
			return idx, true
		}
	}
	return 0, false
}

func (s *uniquingSet) insert(v cf.Value, idx int) {
	h := v.Hash()
	s.buckets[h] = append(s.buckets[h], idx)
}

// flattenedObject pairs an object-list entry with the refs its children
// already resolved to during the walk (populated only for containers).
type flattenedObject struct {
	value    cf.Value
	keyRefs  []int // dictionaries only
	valRefs  []int // array/set values, or dictionary values
}

// flattener performs the pre-order walk described in §4.D, producing an
// ordered object list (index 0 is always the root). Child refs are recorded
// as each container's children are walked, so the encoder never needs to
// look a value back up by identity after the fact — which matters because
// cf.Data (a byte slice) cannot be used as a map key.
type flattener struct {
	objects []*flattenedObject
	values  []cf.Value
	unique  *uniquingSet
}

func newFlattener() *flattener {
	return &flattener{unique: newUniquingSet()}
}

// flatten walks root and returns the ordered flattened object list.
func flatten(root cf.Value) []*flattenedObject {
	f := newFlattener()
	f.walk(root)
	return f.objects
}

// walk appends v (or reuses a uniqued equal value already present) and
// returns its object-list index.
func (f *flattener) walk(v cf.Value) int {
	if v == nil {
		v = cf.Null{}
	}

	if isUniquedKind(v) {
		if idx, ok := f.unique.find(v, f.values); ok {
			return idx
		}
	}

	idx := len(f.objects)
	obj := &flattenedObject{value: v}
	f.objects = append(f.objects, obj)
	f.values = append(f.values, v)

	if isUniquedKind(v) {
		f.unique.insert(v, idx)
	}

	switch t := v.(type) {
	case *cf.Dictionary:
		// Binary output has no separate key-sort step the way the XML/text
		// generators get from cf.Dictionary.Range, so sort here too: every
		// format ends up emitting a dictionary's entries in the same,
		// deterministic key order.
		t.Sort()

		// Keys first as a group, then values as a group (§4.D.2).
		obj.keyRefs = make([]int, len(t.Keys))
		for i, k := range t.Keys {
			obj.keyRefs[i] = f.walk(cf.String(k))
		}
		obj.valRefs = make([]int, len(t.Values))
		for i, sv := range t.Values {
			obj.valRefs[i] = f.walk(sv)
		}
	case *cf.Array:
		obj.valRefs = make([]int, len(t.Values))
		for i, sv := range t.Values {
			obj.valRefs[i] = f.walk(sv)
		}
	case *cf.Set:
		obj.valRefs = make([]int, len(t.Values))
		for i, sv := range t.Values {
			obj.valRefs[i] = f.walk(sv)
		}
	}

	return idx
}
