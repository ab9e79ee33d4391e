package itchio

import (
	"fmt"
	"strings"
)

type Platform int

const (
	PlatformWindows Platform = iota
	PlatformLinux
	PlatformMacOS
)

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "Windows"
	case PlatformLinux:
		return "Linux"
	case PlatformMacOS:
		return "MacOS"
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

const platformIconPrefix = "icon-"

// ClassifyPlatform maps an icon class with the "icon-" prefix already removed
// to a platform. Unknown tokens are an error, never skipped.
func ClassifyPlatform(token string) (Platform, error) {
	switch token {
	case "windows8":
		return PlatformWindows, nil
	case "tux":
		return PlatformLinux, nil
	case "apple":
		return PlatformMacOS, nil
	}
	return 0, &InvalidPlatformError{Token: token}
}

// platformToken returns the first class of an icon that carries the icon prefix,
// with the prefix removed.
func platformToken(class string) (string, bool) {
	for _, c := range strings.Fields(class) {
		token, ok := strings.CutPrefix(c, platformIconPrefix)
		if ok {
			return token, true
		}
	}
	return "", false
}
