package main

import (
	"crypto-price-pipeline/internal/cli"
)

func main() {
	cli.Execute()
}
