package main

import "github.com/curate-labs/topicforge/cmd"

func main() {
	cmd.Execute()
}
