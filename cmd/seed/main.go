package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"glycolog/database"
	"glycolog/internal/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found: %v", err)
		}
	}
}

func main() {
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	numUsers := seedCmd.Int("users", utils.DefaultNumUsers, "Number of demo users to create")
	sessionsPerUser := seedCmd.Int("sessions", utils.DefaultSessionsPerUser, "Completed sessions per user")

	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		seedCmd.Parse(os.Args[2:])

		database.ConnectDatabase()
		if err := database.MigrateDatabase(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		log.Printf("Seeding %d demo users with %d sessions each", *numUsers, *sessionsPerUser)
		if err := utils.SeedDemoData(database.DB, *numUsers, *sessionsPerUser); err != nil {
			log.Fatalf("Error seeding demo data: %v", err)
		}

	case "delete":
		database.ConnectDatabase()

		log.Println("Deleting demo data")
		if err := utils.DeleteDemoData(database.DB); err != nil {
			log.Fatalf("Error deleting demo data: %v", err)
		}

	case "help":
		printHelp()

	default:
		fmt.Printf("Unknown subcommand: %s\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Database utility tool for Glycolog")
	fmt.Println("\nUsage:")
	fmt.Println("  db-tool COMMAND [OPTIONS]")
	fmt.Println("\nCommands:")
	fmt.Println("  seed         Create demo users with sessions and glucose logs")
	fmt.Println("               Options:")
	fmt.Println("                 --users=N      Number of demo users to create (default: 20)")
	fmt.Println("                 --sessions=N   Completed sessions per user (default: 30)")
	fmt.Println("")
	fmt.Println("  delete       Delete all demo users and their data")
	fmt.Println("")
	fmt.Println("  help         Show this help message")
	fmt.Println("")
	fmt.Println("Environment variables:")
	fmt.Println("  DB_HOST      Database host")
	fmt.Println("  DB_PORT      Database port")
	fmt.Println("  DB_USER      Database user")
	fmt.Println("  DB_PASSWORD  Database password")
	fmt.Println("  DB_NAME      Database name")
	fmt.Println("  DB_SSLMODE   Database SSL mode")
}
