package main

import "github.com/oshokin/wallpaper-deployer/cmd/wallpaper-deployer/cmd"

func main() {
	cmd.Execute()
}
