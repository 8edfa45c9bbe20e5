package main

import (
	"github.com/fendaq/text-detection-1/cmd/ocr/cmd"
)

func main() {
	cmd.Execute()
}
