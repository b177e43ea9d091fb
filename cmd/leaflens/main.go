package main

import "github.com/leaflens/leaflens/internal/cli"

var (
	version   string
	buildDate string
)

func main() {
	if version != "" {
		cli.Version = version
	}
	if buildDate != "" {
		cli.BuildDate = buildDate
	}
	cli.Execute()
}
