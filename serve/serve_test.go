package serve

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pedia/controlpath"
	"github.com/valyala/fasthttp"
)

func newDispatcher(t *testing.T) *controlpath.Dispatcher {
	t.Helper()

	mods := controlpath.NewModules().
		Add("app/Controller.go", func(inj controlpath.Injections) (any, error) {
			return nil, inj.Flow().Define("Controller", func() controlpath.Handler {
				return controlpath.NewHandler().
					Always(func() string { return "layout" }).
					Handle("method", func(ctx *fasthttp.RequestCtx) string {
						return string(ctx.Method())
					})
			})
		}).
		Add("app/hello.go", func(controlpath.Injections) (any, error) {
			return "hello", nil
		}).
		Add("app/broken.go", func(controlpath.Injections) (any, error) {
			return nil, errors.New("broken")
		})

	d, err := controlpath.New("app", mods, controlpath.Options{})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d
}

func serve(h fasthttp.RequestHandler, method, uri string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	h(&ctx)
	return &ctx
}

func TestHandler(t *testing.T) {
	h := Handler(newDispatcher(t), Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	tests := []struct {
		method string
		uri    string
		status int
		body   string
	}{
		{fasthttp.MethodGet, "/hello", fasthttp.StatusOK, "layout\nhello\n"},
		{fasthttp.MethodGet, "/hello?x=1", fasthttp.StatusOK, "layout\nhello\n"},
		{fasthttp.MethodPost, "/method", fasthttp.StatusOK, "layout\nPOST\n"},
		{fasthttp.MethodGet, "/missing", fasthttp.StatusNotFound, "Not Found"},
		{fasthttp.MethodGet, "/nested/missing", fasthttp.StatusNotFound, "Not Found"},
		{fasthttp.MethodGet, "/broken", fasthttp.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		ctx := serve(h, tt.method, tt.uri)
		if got := ctx.Response.StatusCode(); got != tt.status {
			t.Errorf("%s %s: want status %d, got %d", tt.method, tt.uri, tt.status, got)
		}
		if got := string(ctx.Response.Body()); got != tt.body {
			t.Errorf("%s %s: want body %q, got %q", tt.method, tt.uri, tt.body, got)
		}
	}
}

func TestHandlerContentType(t *testing.T) {
	d := newDispatcher(t)

	ctx := serve(Handler(d, Options{}), fasthttp.MethodGet, "/hello")
	if got := string(ctx.Response.Header.ContentType()); got != DefaultContentType {
		t.Errorf("want content type %q, got %q", DefaultContentType, got)
	}

	ctx = serve(Handler(d, Options{ContentType: "text/html"}), fasthttp.MethodGet, "/hello")
	if got := string(ctx.Response.Header.ContentType()); !strings.HasPrefix(got, "text/html") {
		t.Errorf("want html content type, got %q", got)
	}
}

func TestHandlerNilDispatcher(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Handler(nil, Options{})
}
