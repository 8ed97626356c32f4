package main

import (
	"fmt"
	"os"

	"github.com/symcn/tracker/cmd/tracker/app"
	_ "github.com/symcn/tracker/pkg/directory/file"
	_ "github.com/symcn/tracker/pkg/directory/memory"
	_ "github.com/symcn/tracker/pkg/directory/nacos"
	_ "github.com/symcn/tracker/pkg/directory/zookeeper"
)

func main() {
	rootCmd := app.GetRootCmd(os.Args[1:])

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(-1)
	}
}
