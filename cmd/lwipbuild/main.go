package main

import "github.com/goplus/lwipbuild/cmd/lwipbuild/internal"

func main() {
	internal.Execute()
}
