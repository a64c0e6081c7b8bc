package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
