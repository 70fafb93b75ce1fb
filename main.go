package main

import "github.com/Digital-Shane/scrappy/internal/cmd"

func main() {
	cmd.Execute()
}
