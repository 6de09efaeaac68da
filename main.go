package main

import "github.com/fakeyudi/tt/cmd"

func main() {
	cmd.Execute()
}
