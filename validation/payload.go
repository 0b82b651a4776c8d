package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/c360studio/orevalidate/attribute"
)

// PayloadStage checks that File resources and payload files correspond one
// to one: every File points at a payload file, and every payload file is
// described by a File.
type PayloadStage struct{}

// Name returns the stage name.
func (PayloadStage) Name() string { return "payload-files" }

// Execute lists the bag payload and compares it with the File resources in
// the store. A File without File-Path falls back to its resource id when
// that is a file: reference.
func (s PayloadStage) Execute(_ context.Context, _ string, state *WorkflowState) error {
	if state.Package == nil {
		state.addError("no package to compare File resources against")
		return fmt.Errorf("%s: %w: no package", s.Name(), ErrMissingRequiredAttribute)
	}
	payload, err := state.Package.Payload()
	if err != nil {
		state.addError(fmt.Sprintf("cannot list bag payload: %v", err))
		return fmt.Errorf("%s: list payload: %w", s.Name(), err)
	}
	inPayload := make(map[string]bool, len(payload))
	for _, rel := range payload {
		inPayload[rel] = true
	}

	var msgs []string
	referenced := make(map[string]bool)
	for _, set := range state.Store.OfType(attribute.SetFile) {
		id, _ := set.First(attribute.FileResourceID)
		ref, ok := set.First(attribute.FilePath)
		if !ok {
			if !strings.HasPrefix(id, "file:") {
				msgs = append(msgs, fmt.Sprintf("File %s has no %s", id, attribute.FilePath))
				continue
			}
			ref = id
		}
		rel, err := state.Package.RelativePath(ref)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("File %s has invalid path %q: %v", id, ref, err))
			continue
		}
		if !inPayload[rel] {
			msgs = append(msgs, fmt.Sprintf("File %s references %s, which is not in the bag payload", id, rel))
			continue
		}
		referenced[rel] = true
	}
	for _, rel := range payload {
		if !referenced[rel] {
			msgs = append(msgs, fmt.Sprintf("payload file %s is not described by any File resource", rel))
		}
	}

	if len(msgs) == 0 {
		return nil
	}
	state.Errors = append(state.Errors, msgs...)
	return &ConstraintViolationError{Stage: s.Name(), Messages: msgs}
}
