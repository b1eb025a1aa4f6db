package main

import "solocraft/cmd/solocraft/root"

func main() {
	root.Execute()
}
