package main

import "github.com/naka-gawa/lint-gate/cmd"

func main() {
	cmd.Execute()
}
