//go:build js && wasm

package wasm_utils

import (
	"context"
	"runtime/debug"
	"strings"
	"syscall/js"

	"github.com/norunners/vert"
	"github.com/pkg/errors"
	preprocess "github.com/withastro/preprocess/internal"
	"github.com/withastro/preprocess/internal/transform"
)

// See https://stackoverflow.com/questions/68426700/how-to-wait-a-js-async-function-from-golang-wasm
func Await(awaitable js.Value) ([]js.Value, []js.Value) {
	then := make(chan []js.Value)
	thenFunc := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		then <- args
		return nil
	})
	// defers are called LIFO!
	// This will `close` before `Release()`
	defer thenFunc.Release()
	defer close(then)

	catch := make(chan []js.Value)
	catchFunc := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		catch <- args
		return nil
	})
	defer catchFunc.Release()
	defer close(catch)

	awaitable.Call("then", thenFunc).Call("catch", catchFunc)

	select {
	case result := <-then:
		return result, nil
	case err := <-catch:
		return nil, err
	}
}

func IsPromise(v js.Value) bool {
	return v.Type() == js.TypeObject && v.Get("then").Type() == js.TypeFunction
}

func GetAttrs(attrs []preprocess.Attribute) js.Value {
	obj := js.Global().Get("Object").New()
	for _, attr := range attrs {
		switch attr.Type {
		case preprocess.QuotedAttribute:
			obj.Set(attr.Key, attr.Val)
		case preprocess.EmptyAttribute:
			obj.Set(attr.Key, true)
		case preprocess.ExpressionAttribute:
			obj.Set(attr.Key, "{"+attr.Val+"}")
		}
	}
	return obj
}

func JSString(j js.Value) string {
	if j.IsUndefined() || j.IsNull() {
		return ""
	}
	return j.String()
}

func JSBool(j js.Value) bool {
	if j.IsUndefined() || j.IsNull() {
		return false
	}
	return j.Truthy()
}

func JSStrings(j js.Value) []string {
	if j.Type() != js.TypeObject {
		return nil
	}
	out := make([]string, 0, j.Length())
	for i := 0; i < j.Length(); i++ {
		out = append(out, JSString(j.Index(i)))
	}
	return out
}

// JSTransformer calls a JS function with the block and accepts either its
// result or a Promise of it. The result is a string or an object with code,
// map and dependencies.
type JSTransformer struct {
	Fn js.Value
}

func (t JSTransformer) Transform(ctx context.Context, in transform.Input) (transform.Output, error) {
	if err := ctx.Err(); err != nil {
		return transform.Output{}, err
	}
	arg := js.Global().Get("Object").New()
	arg.Set("content", in.Content)
	arg.Set("filename", in.Filename)
	arg.Set("lang", in.Lang)
	arg.Set("attributes", GetAttrs(in.Attributes))

	value := t.Fn.Invoke(arg)
	if IsPromise(value) {
		res, rejected := Await(value)
		if rejected != nil {
			reason := "rejected"
			if len(rejected) > 0 {
				reason = jsErrorMessage(rejected[0])
			}
			return transform.Output{}, errors.Errorf("%s transformer: %s", in.Lang, reason)
		}
		value = js.Undefined()
		if len(res) > 0 {
			value = res[0]
		}
	}

	switch value.Type() {
	case js.TypeString:
		return transform.Output{Code: value.String()}, nil
	case js.TypeObject:
		return transform.Output{
			Code:         JSString(value.Get("code")),
			Map:          JSString(value.Get("map")),
			Dependencies: JSStrings(value.Get("dependencies")),
		}, nil
	}
	return transform.Output{}, errors.Errorf("%s transformer returned %s, expected a string or an object", in.Lang, value.Type())
}

func jsErrorMessage(v js.Value) string {
	if v.Type() == js.TypeObject && v.Get("message").Type() == js.TypeString {
		return v.Get("message").String()
	}
	return JSString(v)
}

type JSError struct {
	Message string `js:"message"`
	Stack   string `js:"stack"`
}

func (err *JSError) Value() js.Value {
	return vert.ValueOf(err).Value
}

func ErrorToJSError(err error) js.Value {
	stack := string(debug.Stack())
	message := strings.TrimSpace(err.Error())
	jsError := JSError{
		Message: message,
		Stack:   stack,
	}
	return jsError.Value()
}
