package main

import "github.com/theirongolddev/aislog/cmd"

func main() {
	cmd.Execute()
}
