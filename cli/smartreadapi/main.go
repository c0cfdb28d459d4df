package main

import (
	"os"

	servecmder "github.com/papercomputeco/smartread/cmd/smartread/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "smartreadapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .smartread/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
