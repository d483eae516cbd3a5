package main

import "github.com/theirongolddev/echolon/cmd"

func main() {
	cmd.Execute()
}
