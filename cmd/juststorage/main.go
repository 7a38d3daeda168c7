package main

import (
	"fmt"
	"os"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/cmd/juststorage/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
