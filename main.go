package main

import "gtrack/cmd"

func main() {
	cmd.Execute()
}
