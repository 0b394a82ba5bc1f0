package main

import "github.com/Quidge/workbench/cmd"

func main() {
	cmd.Execute()
}
