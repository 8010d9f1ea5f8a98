package main

import "wfguard/internal/cli"

func main() {
	cli.Execute()
}
