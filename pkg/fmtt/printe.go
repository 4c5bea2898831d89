package fmtt

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

// PrintErrChain walks an error chain and prints each layer with its type.
// Joined errors and multi-%w wraps are followed depth first.
func PrintErrChain(w io.Writer, err error) {
	if err == nil {
		fmt.Fprintln(w, "<nil>")
		return
	}
	walk(err, 0, func(depth int, e error) {
		fmt.Fprintf(w, "%*s[%d] %T: %v\n", depth*2, "", depth, e, e)
	})
}

// PrintErrChainDebug is PrintErrChain plus a spew dump and the exported struct fields
// of every layer.
func PrintErrChainDebug(w io.Writer, err error) {
	cfg := spew.ConfigState{Indent: "  ", DisableMethods: true, MaxDepth: 4}
	walk(err, 0, func(depth int, e error) {
		fmt.Fprintf(w, "[%d] %T\n", depth, e)
		fmt.Fprintf(w, "   Error(): %v\n", e)
		cfg.Fdump(w, e)

		rv := reflect.ValueOf(e)
		rt := rv.Type()
		if rt.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return
			}
			rv, rt = rv.Elem(), rt.Elem()
		}
		if rt.Kind() != reflect.Struct {
			return
		}
		for j := 0; j < rt.NumField(); j++ {
			f, v := rt.Field(j), rv.Field(j)
			if v.CanInterface() {
				fmt.Fprintf(w, "   Field %s (%s): %+v\n", f.Name, f.Type, v.Interface())
			}
		}
	})
}

func walk(err error, depth int, fn func(int, error)) {
	if err == nil {
		return
	}
	fn(depth, err)
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			walk(e, depth+1, fn)
		}
	default:
		walk(errors.Unwrap(err), depth+1, fn)
	}
}
