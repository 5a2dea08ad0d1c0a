package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvDataDir  = "PREDPREY_DATA"
	EnvLogLevel = "PREDPREY_LOG_LEVEL"

	DefaultDataDir = ".predprey"
)

// LoadEnv reads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func DataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	return DefaultDataDir
}

func LogLevel() string {
	return os.Getenv(EnvLogLevel)
}
