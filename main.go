package main

import "github.com/sadopc/lapse/cmd"

func main() {
	cmd.Execute()
}
