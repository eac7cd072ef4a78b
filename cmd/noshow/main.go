package main

import "github.com/vetsight-ai/noshow/pkg/cli"

func main() {
	cli.Execute()
}
