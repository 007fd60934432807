package validation

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// MissingMachineIDMessage is the 400 body when no machine id can be resolved.
const MissingMachineIDMessage = "missing machine_id"

// BindInventoryRequest reads machine_id from the query string, falling back to
// defaultMachineID, and validates it.
// If validation fails, it writes a 400 response and returns an error for the handler to short-circuit.
func BindInventoryRequest(c *gin.Context, v *validatorv10.Validate, defaultMachineID string) (InventoryRequest, error) {
	var req InventoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return req, err
	}
	if strings.TrimSpace(req.MachineID) == "" {
		req.MachineID = defaultMachineID
	}

	if err := v.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorMessage(err)})
		return req, err
	}
	req.MachineID = strings.TrimSpace(req.MachineID)
	return req, nil
}

func errorMessage(err error) string {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for _, fe := range ve {
		if fe.StructField() == "MachineID" && fe.Tag() == "required" {
			return MissingMachineIDMessage
		}
	}
	fe := ve[0]
	return "invalid machine_id: failed " + fe.Tag() + " check"
}
