// Command packwrightd runs the packaging daemon in the foreground. It is the
// standalone counterpart to `packwright daemon`, intended for service
// managers that supervise the process themselves.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"packwright/internal/config"
	"packwright/internal/daemonrun"
)

func main() {
	var configPath string
	var logLevel string
	var development bool
	flag.StringVar(&configPath, "config", "", "configuration file path")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.BoolVar(&development, "dev", false, "enable development logging output")
	flag.Parse()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel:    logLevel,
		Development: development,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
