package main

import "github.com/bbernstein/tidetimes/internal/cli"

func main() {
	cli.Execute()
}
