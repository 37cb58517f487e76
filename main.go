package main

import (
	"github.com/gswitch/gs/cmd"
)

func main() {
	cmd.Execute()
}
