package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/adelabdelgawad/auth-base/internal/auth"
	"github.com/adelabdelgawad/auth-base/internal/bootstrap"
	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/version"
)

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	// Check if command is provided
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Handle subcommands
	switch args[0] {
	case "server":
		runServer()
	case "hash-password":
		hashPassword(args[1:])
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("Authentication and directory integration server")
	fmt.Println("\nCommands:")
	fmt.Println("  server                    Start the API server")
	fmt.Println("  hash-password PASSWORD    Print the bcrypt hash of PASSWORD")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	cfg := config.Load()

	if err := bootstrap.Run(context.Background(), cfg); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func hashPassword(args []string) {
	if len(args) != 1 || args[0] == "" {
		fmt.Println("Usage: hash-password PASSWORD")
		os.Exit(1)
	}
	hash, err := auth.HashPassword(args[0])
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(hash)
}
