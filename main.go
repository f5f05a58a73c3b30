package main

import "github.com/mame82/editool/cmd"

func main() {
	cmd.Execute()
}
