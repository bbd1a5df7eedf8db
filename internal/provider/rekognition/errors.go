package rekognition

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid AWS credentials or insufficient permissions")
	ErrMissingLandmarks   = errors.New("rekognition response has no usable landmarks")
	ErrMissingBoundingBox = errors.New("rekognition response has no bounding box")
)
