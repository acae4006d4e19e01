package main

import "github.com/hwallberg/revisor/revisor/cmd"

func main() {
	cmd.Execute()
}
