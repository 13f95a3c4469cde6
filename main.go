package main

import "github.com/getyour/gyadmin/cmd"

func main() {
	cmd.Execute()
}
