package main

import "botpanel/internal/cli"

func main() {
	cli.Execute()
}
