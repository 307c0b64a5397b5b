package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types

    "github.com/shopspring/decimal" // decimal represents tariff amounts exactly
)

// Tariff bundles the configurable pricing constants of the lot.  The
// values are read once at startup and passed by value into the billing
// calculator; there is no ambient mutable tariff state.
type Tariff struct {
    First15  decimal.Decimal // flat amount for stays up to 15 minutes
    First60  decimal.Decimal // flat amount for stays up to 60 minutes
    Extra15  decimal.Decimal // increment per started 15 minute block past 60
    Discount decimal.Decimal // loyalty discount rate (0.30 = 30%)
}

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing
    Tariff         Tariff // parking tariff constants
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Tariff values are
// optional and default to the published price table.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),             // environment (dev/test/prod)
        Port:           must("APP_PORT"),            // port to bind the HTTP server
        DBUser:         must("DB_USER"),             // database user
        DBPass:         os.Getenv("DB_PASS"),        // database password (empty allowed)
        DBHost:         must("DB_HOST"),             // database host
        DBPort:         must("DB_PORT"),             // database port
        DBName:         must("DB_NAME"),             // database name
        JWTSecret:      must("JWT_SECRET"),          // secret used for signing JWTs
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
        BcryptCost:     mustInt("BCRYPT_COST"),      // bcrypt cost factor
        Tariff: Tariff{
            First15:  decOr("TARIFF_FIRST_15_MIN", "5.00"),
            First60:  decOr("TARIFF_FIRST_60_MIN", "9.25"),
            Extra15:  decOr("TARIFF_EXTRA_15_MIN", "1.75"),
            Discount: decOr("TARIFF_DISCOUNT_RATE", "0.30"),
        },
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// decOr reads an optional decimal environment variable, falling back to the
// provided default.  A malformed value is a configuration error and halts
// startup rather than silently mispricing stays.
func decOr(key, def string) decimal.Decimal {
    s := os.Getenv(key)
    if s == "" {
        s = def
    }
    d, err := decimal.NewFromString(s)
    if err != nil {
        log.Fatalf("invalid decimal for %s: %q", key, s)
    }
    return d
}
