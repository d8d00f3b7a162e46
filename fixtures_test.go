package controlpath

// define returns a module body that defines a handler type named name
// under the type prefix of the loading depth.
func define(name string, factory any) ModuleFunc {
	return func(inj Injections) (any, error) {
		return nil, inj.Flow().Define(name, factory)
	}
}

// returning returns a module body that produces v.
func returning(v any) ModuleFunc {
	return func(Injections) (any, error) {
		return v, nil
	}
}

func constant(s string) func() string {
	return func() string { return s }
}

// app1 is a tree with section handlers at several depths, member pages,
// value pages and page handler types.
func app1() *Modules {
	return NewModules().
		Add("app1/Controller.go", define("Controller", func() Handler {
			return NewHandler().
				Always(constant("bob")).
				Handle("index", constant("section index")).
				Handle("page1", constant("App.Control.Controller::page1"))
		})).
		Add("app1/page2.go", returning("sue")).
		Add("app1/page3.go", define("page3", func() Handler {
			return NewHandler().Always(constant("jane"))
		})).
		Add("app1/section1/Controller.go", define("Controller", func() Handler {
			return NewHandler().
				Always(constant("bill")).
				Handle("index", constant("section index")).
				Handle("page1", constant("App.Control.section1.Controller::page1"))
		})).
		Add("app1/section1/page2.go", returning("sue")).
		Add("app1/section1/section2/page3.go", returning("moe")).
		Add("app1/section1/section2/section3/Controller.go", define("Controller", func() Handler {
			return NewHandler().
				Always(constant("dan")).
				Handle("index", constant("section index"))
		}))
}

// app3 exercises injection into modules, callables, factories and members.
func app3() *Modules {
	return NewModules().
		Add("app3/Controller.go", define("Controller", func() Handler {
			return NewHandler().
				Always(func(d *Dispatcher) *Dispatcher { return d }).
				Handle("index", func(bob string) string { return bob })
		})).
		Add("app3/page2.go", func(inj Injections) (any, error) {
			return inj["bob"], nil
		}).
		Add("app3/page3.go", returning(func(bob string) string { return bob })).
		Add("app3/page4.go", define("page4", func(d *Dispatcher) Handler {
			return NewHandler().Always(func() *Dispatcher { return d })
		}))
}

// app4 exercises stopping, visibility, resolver errors and the share.
func app4() *Modules {
	return NewModules().
		Add("app4/Controller.go", define("Controller", func() Handler {
			return NewHandler().
				Always(func(s Share) string {
					s["who"] = "bob"
					return "bob"
				}).
				Hide("page4", constant("hidden")).
				Hide("__secret", func() string { panic("reserved member invoked") })
		})).
		Add("app4/section1/Controller.go", define("Controller", func() Handler {
			return NewHandler().
				Always(func(f *Flow) string {
					f.Stop()
					return "moe"
				}).
				Handle("page2", constant("page2"))
		})).
		Add("app4/section1/section2/Controller.go", returning("unreachable")).
		Add("app4/section2/Controller.go", returning(false)).
		Add("app4/section2/section3/Controller.go", returning("unreachable")).
		Add("app4/page5.go", define("page5", func() string { return "not a handler" })).
		Add("app4/page6.go", returning(func(n int) int { return n })).
		Add("app4/page7.go", func(inj Injections) (any, error) {
			if err := inj.Flow().Define("page7", func() Handler {
				return NewHandler().Always(constant("always"))
			}); err != nil {
				return nil, err
			}
			return func(f *Flow) string {
				f.Stop()
				return "stopped"
			}, nil
		}).
		Add("app4/page11.go", returning(func(s Share) any { return s["who"] }))
}
