// Package main is the production entry point for the TuneBox music player.
//
// Build:
//
//	go build -o build/tunebox ./cmd
//
// Run:
//
//	./build/tunebox [files or folders...]
//	./build/tunebox serve --root ./web
package main

import "github.com/tejashwikalptaru/tunebox/internal/cli"

func main() {
	cli.Execute()
}
