package detect

import (
	"fmt"

	cvtrack "github.com/swdee/go-cvtrack"
)

// New creates the Detector for the given target using its parameters
func New(target cvtrack.Target, params Params) (cvtrack.Detector, error) {

	switch target {
	case cvtrack.Human:
		return NewHuman(params.Human), nil
	case cvtrack.Dog:
		return NewDog(params.Dog), nil
	case cvtrack.Car:
		return NewCar(params.Car), nil
	}

	return nil, fmt.Errorf("%w: %q", cvtrack.ErrUnknownTarget, target)
}

// Factory returns a constructor for the target's Detector suitable for
// filling a cvtrack.Pool
func Factory(target cvtrack.Target, params Params) func() (cvtrack.Detector, error) {
	return func() (cvtrack.Detector, error) {
		return New(target, params)
	}
}
