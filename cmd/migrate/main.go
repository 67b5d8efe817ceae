// main.go - Entry point of the migrate tool

package main

import (
	"os"

	"go-blog-backend/cli"
)

func main() {
	if err := cli.NewMigrateCommand().Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
