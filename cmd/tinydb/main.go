package main

import "go.tinydb/internal/cli"

func main() {
	cli.Execute()
}
