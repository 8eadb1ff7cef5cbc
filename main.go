package main

import "github/chapool/go-hwctl/cmd"

func main() {
	cmd.Execute()
}
