// main.go - Entry point of the create-admin tool

package main

import (
	"os"

	"go-blog-backend/cli"
)

func main() {
	if err := cli.NewCreateAdminCommand().Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
