package domain

import "fmt"

// UnknownProviderError reports a request for a provider id that is not in
// the registry. It is a configuration error: the run fails before any
// capture work starts.
type UnknownProviderError struct {
	ID string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.ID)
}

// AcquisitionError reports that a snapshot could not be obtained for one
// provider. Recovered locally: the run records it and continues.
type AcquisitionError struct {
	Provider string
	Cause    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire snapshot for %s: %v", e.Provider, e.Cause)
}

func (e *AcquisitionError) Unwrap() error { return e.Cause }

// ImageLoadError reports a snapshot that was obtained but could not be
// decoded or analyzed. Same recovery policy as AcquisitionError.
type ImageLoadError struct {
	Source string
	Cause  error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("load image %s: %v", e.Source, e.Cause)
}

func (e *ImageLoadError) Unwrap() error { return e.Cause }

// StoreError reports that persistence failed after a completed run. The
// computed result is still returned to the caller so it is not lost.
type StoreError struct {
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("persist aggregate result: %v", e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }
