// Command seqdemo walks through the seqkit sequence operators.
//
//	seqdemo                      # every demo
//	seqdemo -demos query,infinite
//	SEQDEMO_DRAWER_ENABLED=true seqdemo -config ./config.yml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/internal/app"
	"github.com/kbukum/seqkit/internal/demo"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/version"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	demos := flag.String("demos", "", "comma-separated demos to run, in order")
	list := flag.Bool("list", false, "list the available demos and exit")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().Full())
		return
	}
	if *list {
		registry := demo.Builtin()
		for _, name := range registry.Names() {
			d, _ := registry.Get(name)
			fmt.Printf("%-14s %s\n", d.Name, d.Description)
		}
		return
	}

	if err := run(*configFile, *demos); err != nil {
		fmt.Fprintln(os.Stderr, "seqdemo:", err)
		os.Exit(1)
	}
}

func run(configFile, demos string) error {
	opts := []config.LoaderOption{config.WithEnvPrefix("SEQDEMO")}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	// Logging config is not known until the file is loaded; LOG_* env vars
	// drive this logger until then.
	boot := logger.NewFromEnv("seqdemo")
	boot.Debug("loading config", logger.Fields("file", configFile))

	var cfg app.Config
	if err := config.LoadConfig("seqdemo", &cfg, opts...); err != nil {
		boot.WithError(err).Error("config load failed")
		return err
	}
	if names := parseDemos(demos); len(names) > 0 {
		cfg.Demos = names
	}

	cfg.ApplyDefaults()
	logger.Init(cfg.Logging)
	logger.RegisterDefaults("demo", "drawer")
	logger.Info("seqdemo", version.Get().Fields())

	return app.Run(context.Background(), &cfg, app.Options{})
}

// parseDemos splits a -demos value on commas, trimming each name and
// dropping empty ones.
func parseDemos(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
