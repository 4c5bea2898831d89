package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field[T] records whether a JSON key was present and, if so, its value.
//   - IsSet() == false => key absent; leave the target unchanged (merge-patch)
//   - IsNull() == true => key present with null
type Field[T any] struct {
	set bool
	val *T
}

func (f Field[T]) IsSet() bool  { return f.set }
func (f Field[T]) IsNull() bool { return f.set && f.val == nil }
func (f Field[T]) Value() *T    { return f.val }

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.set, f.val = true, nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.set, f.val = true, &v
	return nil
}

// NonNull returns the field's value for a merge-patch on a non-nullable target:
// nil when absent, an error when explicitly null.
func (f Field[T]) NonNull(name string) (*T, error) {
	if !f.set {
		return nil, nil
	}
	if f.val == nil {
		return nil, fmt.Errorf("%s cannot be null", name)
	}
	return f.val, nil
}
