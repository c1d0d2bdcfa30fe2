// The main package for the yad2watch executable.
package main

import (
	"github.com/yad2watch/yad2watch/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
