package main

import "github.com/mvp-joe/archdiag/internal/cli"

func main() {
	cli.Execute()
}
