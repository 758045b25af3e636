package main

import (
	"flag"
	"fmt"
	"os"
	"staffping/internal/di"
	"staffping/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "c", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "d", false, "enable debug mode")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "staffping: %s\n", err)
		os.Exit(1)
	}
}
