// Package main provides the entry point for the modsync CLI.
package main

import "os"

func main() {
	os.Exit(Execute())
}
