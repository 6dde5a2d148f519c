package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotenv copies variables from an env file into the process environment
// without overriding ones already set. An empty path means ".env", or
// ENV_FILE when that is set; a missing default file is not an error.
func LoadDotenv(path string) error {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("ENV_FILE")
		explicit = path != ""
	}
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
