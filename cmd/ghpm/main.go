package main

import "github.com/oshokin/ghpm/cmd/ghpm/cmd"

func main() {
	cmd.Execute()
}
