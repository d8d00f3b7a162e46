// Package serve exposes a controlpath.Dispatcher over HTTP with fasthttp.
//
// Every request path is dispatched once. The values handlers produce are
// written to the response body, one per line.
package serve

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pedia/controlpath"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

// InjectRequest is the injection key of the *fasthttp.RequestCtx being served.
const InjectRequest = "request"

// DefaultContentType is used when Options.ContentType is empty.
const DefaultContentType = "text/plain; charset=utf-8"

// Options configures the request handler.
type Options struct {
	// Logger receives dispatch failures. slog.Default() is used when nil.
	Logger *slog.Logger

	// ContentType of successful responses.
	ContentType string
}

// Handler returns a fasthttp request handler dispatching request paths
// through d. Unknown paths get 404; any other dispatch error gets 500.
func Handler(d *controlpath.Dispatcher, opts Options) fasthttp.RequestHandler {
	if d == nil {
		panic("dispatcher must not be nil")
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	return func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())

		values, err := d.Load(path, controlpath.StartOptions{
			Inject: controlpath.Injections{InjectRequest: ctx},
		})
		if err != nil {
			if errors.Is(err, controlpath.ErrNotFound) {
				ctx.Error(fasthttp.StatusMessage(fasthttp.StatusNotFound), fasthttp.StatusNotFound)
				return
			}

			log.Error("dispatch failed", "path", path, "error", err)
			ctx.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
			return
		}

		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		for _, v := range values {
			fmt.Fprintln(buf, v)
		}

		ctx.SetContentType(contentType)
		ctx.SetStatusCode(fasthttp.StatusOK)
		// SetBody copies, so buf can go back to the pool
		ctx.SetBody(buf.B)
	}
}

// ListenAndServe serves d on addr until the listener fails.
func ListenAndServe(addr string, d *controlpath.Dispatcher, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("listening", "addr", addr, "context", d.Context())

	return fasthttp.ListenAndServe(addr, Handler(d, opts))
}
