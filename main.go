package main

import "github.com/trailwatch/apiscan/cmd"

func main() {
	cmd.Execute()
}
