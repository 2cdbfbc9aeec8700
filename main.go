package main

import "github.com/n0fate/chainbreaker-go/cmd"

func main() {
	cmd.Execute()
}
