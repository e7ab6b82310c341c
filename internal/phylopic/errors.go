package phylopic

import "fmt"

// Step names a stage of image resolution.
type Step string

const (
	StepMatch   Step = "match"   // building object ids from the GBIF match
	StepResolve Step = "resolve" // looking up the primary image
	StepImage   Step = "image"   // fetching the image resource
	StepAsset   Step = "asset"   // reading the display asset link
)

// ResolutionError reports the step at which image resolution failed.
type ResolutionError struct {
	Step Step
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("phylopic %s: %v", e.Step, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
