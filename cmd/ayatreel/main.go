package main

import "github.com/forPelevin/ayatreel/internal/cli"

func main() {
	cli.Main()
}
