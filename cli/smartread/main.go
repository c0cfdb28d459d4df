package main

import (
	"os"

	smartreadcmder "github.com/papercomputeco/smartread/cmd/smartread"
)

func main() {
	cmd := smartreadcmder.NewSmartreadCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
