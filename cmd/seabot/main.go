package main

import "github.com/botshop/go-seabot/seabot/cmd"

func main() {
	cmd.Execute()
}
