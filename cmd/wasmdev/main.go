package main

import "github.com/h-ikeda/strust/cmd/wasmdev/cmd"

func main() {
	cmd.Execute()
}
