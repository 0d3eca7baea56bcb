package cmd

import (
	"fmt"
	"runtime"
)

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the widgetcore version, build time, and Go runtime.",
		Usage: "widgetcore version",
		Run: func([]string) error {
			printVersion()
			return nil
		},
	})
}

func printVersion() {
	fmt.Printf("widgetcore version %s (built %s, %s %s/%s)\n", Version, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
