package main

import "shellgate/internal/cli"

func main() {
	cli.Execute()
}
