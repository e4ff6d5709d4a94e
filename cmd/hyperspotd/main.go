// Command hyperspotd is the HyperSpot process entry point (spec.md §4.9,
// C9). It blank-imports every module package so their init() functions
// register with internal/registry before main runs, parses the -config
// flag, and hands off to internal/orchestrator.Run, which loads the
// configuration and drives the rest of the process lifecycle.
package main

import (
	"flag"
	"os"

	"github.com/hyperspotdev/hyperspot/internal/config"
	"github.com/hyperspotdev/hyperspot/internal/orchestrator"

	_ "github.com/hyperspotdev/hyperspot/modules/apiingress"
	_ "github.com/hyperspotdev/hyperspot/modules/backup"
	_ "github.com/hyperspotdev/hyperspot/modules/directory"
	_ "github.com/hyperspotdev/hyperspot/modules/livestatus"
	_ "github.com/hyperspotdev/hyperspot/modules/sysmetrics"
)

const (
	title   = "HyperSpot"
	version = "0.1.0"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to the HyperSpot configuration file (default config.json)")
	flag.Parse()

	code := orchestrator.Run(orchestrator.Options{
		ConfigOptions: config.Options{ConfigPath: configPath},
		Title:         title,
		Version:       version,
	})
	os.Exit(code)
}
