package main

import "github.com/MeKo-Tech/visage/cmd/visage/cmd"

func main() {
	cmd.Execute()
}
