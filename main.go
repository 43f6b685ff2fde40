package main

import "github.com/zmk5566/Crowd-Sonic/cmd"

func main() {
	cmd.Execute()
}
