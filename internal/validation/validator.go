package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a validator that trims machine ids before checking them.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterStructValidation(inventoryRequestStructValidation, InventoryRequest{})

	return v
}

// inventoryRequestStructValidation rejects ids made only of whitespace, which
// the required tag lets through, and dot segments, which would rewrite the
// upstream path.
func inventoryRequestStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(InventoryRequest)
	id := strings.TrimSpace(req.MachineID)
	switch {
	case req.MachineID != "" && id == "":
		sl.ReportError(req.MachineID, "machine_id", "MachineID", "required", "")
	case id == "." || id == "..":
		sl.ReportError(req.MachineID, "machine_id", "MachineID", "dotsegment", "")
	}
}
