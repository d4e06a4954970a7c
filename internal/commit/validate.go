package commit

import (
	"github.com/restic/firestoremock/internal/status"
	"github.com/restic/firestoremock/internal/value"
)

// validateDocument enforces the size and depth limits of §4.5/§6 against a
// fully merged and transformed document body.
func validateDocument(fields map[string]value.Value) error {
	if depth := value.MapDepth(fields); depth > value.MaxMapDepth {
		return status.InvalidArgument("document exceeds maximum nesting depth of %d levels", value.MaxMapDepth)
	}
	if size := value.EncodedSize(fields); size > value.MaxDocumentBytes {
		return status.InvalidArgument("document size %d bytes exceeds maximum of %d bytes", size, value.MaxDocumentBytes)
	}
	return validateVectors(fields)
}

// validateVectors recursively checks every vector value's dimension and
// finiteness, per §4.2/§4.5.
func validateVectors(fields map[string]value.Value) error {
	for name, v := range fields {
		if err := validateVectorValue(name, v); err != nil {
			return err
		}
	}
	return nil
}

func validateVectorValue(name string, v value.Value) error {
	switch v.Kind {
	case value.KindVector:
		dims := v.Vector()
		if !value.ValidVectorDimension(len(dims)) {
			return status.InvalidArgument("field %q: vector dimension %d outside allowed range [%d, %d]",
				name, len(dims), value.MinVectorDim, value.MaxVectorDim)
		}
		if !value.FiniteVector(dims) {
			return status.InvalidArgument("field %q: vector must contain only finite values", name)
		}
	case value.KindArray:
		for _, e := range v.Array() {
			if err := validateVectorValue(name, e); err != nil {
				return err
			}
		}
	case value.KindMap:
		if err := validateVectors(v.Map()); err != nil {
			return err
		}
	}
	return nil
}
