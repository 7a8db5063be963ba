package cvtrack

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Target is the class of object a Detector looks for
type Target string

const (
	Human Target = "human"
	Dog   Target = "dog"
	Car   Target = "car"
)

// ErrUnknownTarget is returned when parsing a target name that has no
// matching Detector
var ErrUnknownTarget = errors.New("unsupported target type")

// allowedExtensions are the video container formats accepted for processing
var allowedExtensions = map[string]struct{}{
	"mp4": {},
	"avi": {},
	"mov": {},
}

// Targets returns all supported targets
func Targets() []Target {
	return []Target{Human, Dog, Car}
}

// ParseTarget converts the given name into a Target.  The name must match
// exactly, eg: "car"
func ParseTarget(name string) (Target, error) {
	for _, t := range Targets() {
		if string(t) == name {
			return t, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, name)
}

// String returns the target name
func (t Target) String() string {
	return string(t)
}

// AllowedExtension checks if the filename has one of the video file
// extensions we accept, ignoring case
func AllowedExtension(filename string) bool {

	ext := filepath.Ext(filename)

	if ext == "" || ext == "." {
		return false
	}

	_, ok := allowedExtensions[strings.ToLower(ext[1:])]
	return ok
}
