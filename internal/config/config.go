package config

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Options struct {
	runAddr       string
	logLevel      string
	dataBaseDSN   string
	currencyCode  string
	migrationsDir string
}

func NewOptions() *Options {
	return new(Options)
}

// ParseFlags handles command line arguments
// and stores their values in the corresponding variables.
func (o *Options) ParseFlags() {
	// Load environment variables from the .env file
	loadEnvFile()

	// Override variable values with values from command line flags
	regStringVar(&o.runAddr, "a", getEnvOrDefault("RUN_ADDRESS", ":8080"), "address and port to run server")
	regStringVar(&o.logLevel, "l", getEnvOrDefault("LOG_LEVEL", "debug"), "log level")
	regStringVar(&o.dataBaseDSN, "d", getEnvOrDefault("DATABASE_URI", ""), "database connection string")
	regStringVar(&o.currencyCode, "c", getEnvOrDefault("CURRENCY_CODE", "BHD"), "ISO 4217 currency code reported with amounts")
	regStringVar(&o.migrationsDir, "m", getEnvOrDefault("MIGRATIONS_DIR", "migrations"), "path to database migration files")

	// parse the arguments passed to the server into registered variables
	flag.Parse()
}

func (o *Options) RunAddr() string {
	return o.runAddr
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

func (o *Options) DataBaseDSN() string {
	return o.dataBaseDSN
}

func (o *Options) CurrencyCode() string {
	return o.currencyCode
}

func (o *Options) MigrationsDir() string {
	return o.migrationsDir
}

func regStringVar(p *string, name string, value string, usage string) {
	flag.StringVar(p, name, value, usage)
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file in the working directory.
func loadEnvFile() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, proceeding without it")
	}
}
