package main

import (
	"os"
	_ "time/tzdata"

	"github.com/kilianp07/siteplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
