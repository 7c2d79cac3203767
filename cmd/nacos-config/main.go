// Package main is the entry point of the nacos-config tool.
package main

import (
	"os"

	"github.com/KOMKZ/go-yogan-nacos/cmd/nacos-config/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
