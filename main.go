package main

import "github.com/tonix-tuft/cliche/cmd"

func main() {
	cmd.Execute()
}
