package plist

import (
	"reflect"
	"strings"
	"sync"
)

// fieldInfo describes one struct field's plist representation: the key it
// is stored under, whether it should be omitted when empty, and how to
// reach it (possibly through one or more embedded structs).
type fieldInfo struct {
	name      string
	index     []int
	omitEmpty bool
}

func (f fieldInfo) value(v reflect.Value) reflect.Value {
	for _, i := range f.index {
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v
}

type typeInfo struct {
	fields []fieldInfo
}

var typeInfoCache sync.Map // reflect.Type -> *typeInfo

// getTypeInfo returns the plist field layout for a struct type, caching
// the result the way encoding/json's typeFields does since reflect.Type
// walks are not cheap and structs are marshaled/unmarshaled repeatedly.
func getTypeInfo(typ reflect.Type) (*typeInfo, error) {
	if cached, ok := typeInfoCache.Load(typ); ok {
		return cached.(*typeInfo), nil
	}

	tinfo := &typeInfo{}
	if err := collectFields(typ, nil, tinfo, map[reflect.Type]bool{}); err != nil {
		return nil, err
	}

	actual, _ := typeInfoCache.LoadOrStore(typ, tinfo)
	return actual.(*typeInfo), nil
}

// scannedField is a field candidate found during the breadth-first embedded-
// struct walk, tagged with the depth it was found at so shallower fields can
// shadow deeper ones of the same name.
type scannedField struct {
	fieldInfo
	depth int
}

// collectFields walks typ's fields breadth-first, hoisting the fields of
// anonymous (embedded) struct members the way encoding/json does: an
// embedded field's own fields appear as if declared directly on the outer
// struct. When two or more fields of the same name are found at the
// shallowest depth present, they conflict and are both dropped, matching
// encoding/json's ambiguity rule; a single shallowest field always shadows
// any deeper same-named fields.
func collectFields(typ reflect.Type, index []int, tinfo *typeInfo, _ map[reflect.Type]bool) error {
	type queuedType struct {
		typ   reflect.Type
		index []int
	}

	current := []queuedType{{typ, index}}
	var candidates []scannedField
	visited := map[reflect.Type]bool{}

	for depth := 0; len(current) > 0; depth++ {
		var next []queuedType
		levelVisited := map[reflect.Type]bool{}

		for _, q := range current {
			t := q.typ
			if t.Kind() == reflect.Ptr {
				t = t.Elem()
			}
			if t.Kind() != reflect.Struct || visited[t] || levelVisited[t] {
				continue
			}
			levelVisited[t] = true

			for i := 0; i < t.NumField(); i++ {
				f := t.Field(i)
				if f.PkgPath != "" && !f.Anonymous {
					continue // unexported
				}

				tag := f.Tag.Get("plist")
				if tag == "-" {
					continue
				}

				name, opts := parseTag(tag)
				fi := q.index[:len(q.index):len(q.index)]
				fi = append(fi, i)

				if f.Anonymous && name == "" {
					ft := f.Type
					if ft.Kind() == reflect.Ptr {
						ft = ft.Elem()
					}
					if ft.Kind() == reflect.Struct {
						next = append(next, queuedType{f.Type, fi})
						continue
					}
				}

				if name == "" {
					name = f.Name
				}

				candidates = append(candidates, scannedField{
					fieldInfo: fieldInfo{name: name, index: fi, omitEmpty: opts.Contains("omitempty")},
					depth:     depth,
				})
			}
		}

		for t := range levelVisited {
			visited[t] = true
		}
		current = next
	}

	byName := make(map[string][]scannedField)
	var order []string
	for _, c := range candidates {
		if _, ok := byName[c.name]; !ok {
			order = append(order, c.name)
		}
		byName[c.name] = append(byName[c.name], c)
	}

	for _, name := range order {
		group := byName[name]
		minDepth := group[0].depth
		for _, c := range group[1:] {
			if c.depth < minDepth {
				minDepth = c.depth
			}
		}

		var shallowest []scannedField
		for _, c := range group {
			if c.depth == minDepth {
				shallowest = append(shallowest, c)
			}
		}
		if len(shallowest) != 1 {
			continue // ambiguous at the shallowest depth; drop, per encoding/json
		}
		tinfo.fields = append(tinfo.fields, shallowest[0].fieldInfo)
	}
	return nil
}

type tagOptions string

func parseTag(tag string) (string, tagOptions) {
	if idx := strings.Index(tag, ","); idx != -1 {
		return tag[:idx], tagOptions(tag[idx+1:])
	}
	return tag, tagOptions("")
}

func (o tagOptions) Contains(optionName string) bool {
	s := string(o)
	for s != "" {
		var next string
		if idx := strings.Index(s, ","); idx != -1 {
			s, next = s[:idx], s[idx+1:]
		}
		if s == optionName {
			return true
		}
		s = next
	}
	return false
}
