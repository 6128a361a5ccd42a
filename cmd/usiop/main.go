package main

import "github.com/redfield/usiop/internal/cli"

func main() {
	cli.Execute()
}
