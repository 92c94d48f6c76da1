package main

import "github.com/moyu-x/rmdup/cmd"

func main() {
	cmd.Execute()
}
