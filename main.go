package main

import "github.com/Tiliavir/tsh/cmd"

func main() {
	cmd.Execute()
}
