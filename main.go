package main

import "github.com/WowJuicy/QuickLauncher-v2/cmd"

func main() {
	cmd.Execute()
}
