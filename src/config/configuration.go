package config

import (
	"os"
	"strconv"
)

// GetenvStr returns the value of the environment variable,
// or the empty string when it is unset.
func GetenvStr(key string) string {
	return os.Getenv(key)
}

// GetenvInt parses the environment variable as an integer.
// An unset variable yields zero instead of an error.
func GetenvInt(key string) (*int, error) {
	s := GetenvStr(key)
	if s == "" {
		var i int
		return &i, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		var i int
		return &i, err
	}
	return &v, nil
}

// GetenvBool parses the environment variable as a boolean.
// An unset variable yields false instead of an error.
func GetenvBool(key string) (*bool, error) {
	s := GetenvStr(key)
	if s == "" {
		b := false
		return &b, nil
	}

	v, err := strconv.ParseBool(s)
	if err != nil {
		b := false
		return &b, err
	}
	return &v, nil
}
