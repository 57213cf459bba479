package config

import "os"

func IsDebug() bool {
	return os.Getenv("DEVTERM_DEBUG") == "1"
}
