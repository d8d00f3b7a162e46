// Command controlpath dispatches request paths to Lua handler modules laid
// out in a directory tree.
//
// With path arguments each path is dispatched once and its values printed:
//
//	controlpath -root ./site / /blog/go
//
// Without arguments the tree is served over HTTP.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/pedia/controlpath"
	"github.com/pedia/controlpath/config"
	"github.com/pedia/controlpath/luamodule"
	"github.com/pedia/controlpath/serve"
)

func main() {
	configPath := flag.String("config", "", "TOML config file")
	root := flag.String("root", "", "module directory, overrides the config")
	addr := flag.String("addr", "", "listen address, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *root != "" {
		cfg.Root = *root
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	loader := luamodule.New()
	defer loader.Close()

	d, err := controlpath.New(cfg.Root, loader, controlpath.Options{
		Namespace: cfg.Namespace,
		Inject:    cfg.Injections(),
		Logger:    logger,
	})
	if err != nil {
		log.Fatal(err)
	}

	if flag.NArg() > 0 {
		if err := run(d, flag.Args()); err != nil {
			loader.Close()
			log.Fatal(err)
		}
		return
	}

	if err := serve.ListenAndServe(cfg.Addr, d, serve.Options{Logger: logger}); err != nil {
		loader.Close()
		log.Fatal(err)
	}
}

func run(d *controlpath.Dispatcher, paths []string) error {
	for _, path := range paths {
		values, err := d.Load(path, controlpath.StartOptions{})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		fmt.Printf("%s:\n", path)
		for _, v := range values {
			fmt.Printf("\t%v\n", v)
		}
	}
	return nil
}
