package config_test

import (
	"fmt"

	"github.com/wonny/allocation/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Allocation mode: %s\n", cfg.Portfolio.AllocationMode)
	fmt.Printf("Chart size: %dx%d\n", cfg.Chart.Width, cfg.Chart.Height)
}
