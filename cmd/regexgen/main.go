package main

import (
	"os"

	"github.com/rcliao/regexgen/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
