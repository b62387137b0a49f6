package asec

import "fmt"

// RetrievalError is returned when the archive for Year cannot be downloaded from URL.
type RetrievalError struct {
	Year int
	URL  string
	Err  error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("attempted to download the ASEC for %d, but encountered an error: %v", e.Year, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// TransformError is returned when the downloaded archive cannot be extracted, its tables derived or saved.
type TransformError struct {
	Year int
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("attempted to extract and save the CSV files for %d, but encountered an error: %v", e.Year, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
