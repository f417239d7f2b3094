package main

import "github.com/viam-labs/modpack/cmd/modpack/internal"

func main() {
	internal.Execute()
}
