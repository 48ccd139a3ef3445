package manifest

import (
	"github.com/buger/jsonparser"
)

// span replaces doc[start:end] with the given bytes; nil deletes.
type span struct {
	start, end int
	with       []byte
}

// splice applies spans sorted by start and not overlapping.
func splice(doc []byte, spans []span) []byte {
	if len(spans) == 0 {
		return doc
	}
	out := make([]byte, 0, len(doc))
	last := 0
	for _, s := range spans {
		out = append(out, doc[last:s.start]...)
		out = append(out, s.with...)
		last = s.end
	}
	return append(out, doc[last:]...)
}

// member is one occurrence of a key in an object. Offsets are relative to
// the object; prevEnd is the end of the preceding member's value, or -1.
type member struct {
	prevEnd    int
	start, end int
	typ        jsonparser.ValueType
}

// occurrences lists every member of obj named key, in document order.
// Escaped key spellings match their decoded form.
func occurrences(obj []byte, key string) ([]member, error) {
	var found []member
	prevEnd := -1
	err := jsonparser.ObjectEach(obj, func(k, v []byte, typ jsonparser.ValueType, end int) error {
		start := end - len(v)
		if typ == jsonparser.String {
			start -= 2 // v comes without its quotes
		}
		if string(k) == key {
			found = append(found, member{prevEnd: prevEnd, start: start, end: end, typ: typ})
		}
		prevEnd = end
		return nil
	})
	return found, err
}

// collapse rewrites key in obj the way a last-wins decoder reads it: the
// first occurrence keeps its position and receives replace(last value),
// later occurrences are dropped. It returns the number of occurrences seen.
func collapse(obj []byte, key string, replace func(value []byte, typ jsonparser.ValueType) ([]byte, error)) ([]byte, int, error) {
	found, err := occurrences(obj, key)
	if err != nil || len(found) == 0 {
		return obj, 0, err
	}

	last := found[len(found)-1]
	value, err := replace(obj[last.start:last.end], last.typ)
	if err != nil {
		return nil, 0, err
	}

	spans := make([]span, 0, len(found))
	spans = append(spans, span{start: found[0].start, end: found[0].end, with: value})
	for _, m := range found[1:] {
		spans = append(spans, span{start: m.prevEnd, end: m.end})
	}
	return splice(obj, spans), len(found), nil
}

// replaceWith ignores the current value.
func replaceWith(value []byte) func([]byte, jsonparser.ValueType) ([]byte, error) {
	return func([]byte, jsonparser.ValueType) ([]byte, error) {
		return value, nil
	}
}

// eachObject rewrites the object elements of arr with fn, which receives the
// element index. Other elements are left alone.
func eachObject(arr []byte, fn func(i int, obj []byte) ([]byte, error)) ([]byte, error) {
	var (
		spans []span
		fnErr error
		i     = -1
	)
	_, err := jsonparser.ArrayEach(arr, func(v []byte, typ jsonparser.ValueType, start int, _ error) {
		i++
		if fnErr != nil || typ != jsonparser.Object {
			return
		}
		end := start + len(v)
		out, err := fn(i, arr[start:end])
		if err != nil {
			fnErr = err
			return
		}
		spans = append(spans, span{start: start, end: end, with: out})
	})
	if err == nil {
		err = fnErr
	}
	if err != nil {
		return nil, err
	}
	return splice(arr, spans), nil
}
