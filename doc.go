/*
Package controlpath is a file structure driven request dispatcher.

A path is walked one segment at a time below a root context. Every
directory depth may hold a section handler, and the final segment resolves
to a page. A trivial example is:

	package main

	import (
		"fmt"
		"log"

		"github.com/pedia/controlpath"
	)

	func main() {
		mods := controlpath.NewModules().
			Add("app/Controller.go", func(inj controlpath.Injections) (any, error) {
				return nil, inj.Flow().Define("Controller", func() controlpath.Handler {
					return controlpath.NewHandler().
						Always(func() string { return "layout" }).
						Handle("hello", func() string { return "hello!" })
				})
			})

		d, err := controlpath.New("app", mods, controlpath.Options{})
		if err != nil {
			log.Fatal(err)
		}

		out, err := d.Load("/hello", controlpath.StartOptions{})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out) // [layout hello!]
	}

For the path /blog/go/routers the dispatcher visits:

	Step       File                      Handler type
	section    app/Controller            App.Control.Controller
	section    app/blog/Controller       App.Control.blog.Controller
	section    app/blog/go/Controller    App.Control.blog.go.Controller
	page       member "routers" of the section handler of app/blog/go/,
	           else app/blog/go/routers  App.Control.blog.go.routers

Module files are optional. A module may return a value, a function (which
is invoked with its parameters resolved from the injection map), false to
stop the flow, or nothing. A module that defines a handler type under the
expected name has that type instantiated; its "_always" member then runs in
place of the module result, and a type without one yields nothing. Handler
types are defined once per ModuleCache, so their module never runs twice.

Empty segments become "index", so "/" and "/blog/" resolve the page
"index". Members named "_always" or starting with "__" can never be
addressed as a page.

Every handler may ask for the per-dispatch Share, the running *Flow and the
*Dispatcher, besides the injections passed to New and Start. A handler stops
the walk by returning false or by calling Flow.Stop.
*/
package controlpath
