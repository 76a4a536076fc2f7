package main

import "github.com/total70/journal-ai/cmd"

func main() {
	cmd.Execute()
}
