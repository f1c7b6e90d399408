package config_test

import (
	"context"
	"fmt"
	"log"

	"github.com/sagarc03/stowback/config"
)

func ExampleLoad() {
	// Load with defaults only (no config file)
	cfg, err := config.Load(nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Port: %d, Backend: %s\n", cfg.Server.Port, cfg.Storage.Backend)
	// Output: Port: 5708, Backend: filesystem
}

func ExampleWithContext() {
	cfg, _ := config.Load(nil, nil)

	// Store config in context
	ctx := config.WithContext(context.Background(), cfg)

	// Retrieve later (e.g., in a subcommand)
	retrieved, err := config.FromContext(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Retrieved container: %s\n", retrieved.Storage.Container)
	// Output: Retrieved container: stowback
}
