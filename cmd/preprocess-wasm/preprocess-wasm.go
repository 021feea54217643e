//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/norunners/vert"
	"github.com/withastro/preprocess/internal/handler"
	"github.com/withastro/preprocess/internal/selector"
	"github.com/withastro/preprocess/internal/transform"
	wasm_utils "github.com/withastro/preprocess/internal_wasm/utils"
)

func main() {
	js.Global().Set("__preprocess_transform", js.FuncOf(Transform))
	js.Global().Set("__preprocess_globalize", js.FuncOf(Globalize))
	<-make(chan bool)
}

func makeTransformOptions(options js.Value) transform.TransformOptions {
	if options.Type() != js.TypeObject {
		return transform.TransformOptions{}
	}
	opts := transform.TransformOptions{
		Filename: wasm_utils.JSString(options.Get("filename")),
		Strict:   wasm_utils.JSBool(options.Get("strict")),
	}
	if globalRule := options.Get("globalRule"); globalRule.Type() == js.TypeBoolean {
		opts.DisableGlobalRule = !globalRule.Bool()
	}

	// replace: [[pattern, replacement], ...]
	if replace := options.Get("replace"); replace.Type() == js.TypeObject {
		for i := 0; i < replace.Length(); i++ {
			pair := replace.Index(i)
			opts.Replace = append(opts.Replace, transform.ReplaceRule{
				Pattern:     wasm_utils.JSString(pair.Index(0)),
				Replacement: wasm_utils.JSString(pair.Index(1)),
			})
		}
	}

	if transformers := options.Get("transformers"); transformers.Type() == js.TypeObject {
		keys := js.Global().Get("Object").Call("keys", transformers)
		opts.Transformers = make(map[string]transform.Transformer, keys.Length())
		for i := 0; i < keys.Length(); i++ {
			lang := keys.Index(i).String()
			if fn := transformers.Get(lang); fn.Type() == js.TypeFunction {
				opts.Transformers[lang] = wasm_utils.JSTransformer{Fn: fn}
			}
		}
	}
	return opts
}

// Transform returns a Promise that resolves to the preprocess result.
// JS transformers may return promises, so the work runs on its own goroutine.
func Transform(this js.Value, args []js.Value) interface{} {
	source := wasm_utils.JSString(args[0])
	var options js.Value
	if len(args) > 1 {
		options = args[1]
	}
	opts := makeTransformOptions(options)

	promiseHandler := js.FuncOf(func(this js.Value, promiseArgs []js.Value) interface{} {
		resolve := promiseArgs[0]
		reject := promiseArgs[1]

		go func() {
			h := handler.NewHandler(source, opts.Filename)
			result, err := transform.Preprocess(context.Background(), source, opts, h)
			if result == nil {
				reject.Invoke(wasm_utils.ErrorToJSError(err))
				return
			}
			resolve.Invoke(vert.ValueOf(result).Value)
		}()

		return nil
	})
	defer promiseHandler.Release()

	promiseConstructor := js.Global().Get("Promise")
	return promiseConstructor.New(promiseHandler)
}

func Globalize(this js.Value, args []js.Value) interface{} {
	initial := selector.Local
	if len(args) > 1 && wasm_utils.JSBool(args[1]) {
		initial = selector.Global
	}
	out, err := transform.GlobalizeSelector(wasm_utils.JSString(args[0]), initial)
	if err != nil {
		return wasm_utils.ErrorToJSError(err)
	}
	return out
}
