package pack

import (
	"github.com/teranos/scriptpack/errors"
)

// Request names one packing job.
type Request struct {
	Input      string `json:"input"`
	Output     string `json:"output"`
	EmitSource string `json:"emit_source,omitempty"` // also write the generated source here
}

// Validate checks the required fields without touching the filesystem.
// Input is checked first.
func (r Request) Validate() error {
	if r.Input == "" {
		return errors.WithStack(errors.ErrInputMissingArgument)
	}
	if r.Output == "" {
		return errors.WithStack(errors.ErrOutputMissingArgument)
	}
	return nil
}
