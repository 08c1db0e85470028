package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: digisync (auth|import|wipe|list)")
		os.Exit(1)
	}
	config, err := readConfig(".digisync.toml")
	if err != nil {
		// Try reading from the home directory
		config, err = readConfig(os.Getenv("HOME") + "/" + ".digisync.toml")
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}
	}
	initOAuthConfig(config)
	command := os.Args[1]
	switch command {
	case "auth":
		authorizeAccount()
	case "import":
		importSchedule(os.Args[2:])
	case "wipe":
		wipeCalendars()
	case "list":
		listCalendars()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}
