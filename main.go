package main

import "github.com/frahmantamala/training-tracker/cmd"

func main() {
	cmd.Execute()
}
