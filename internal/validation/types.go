package validation

// InventoryRequest is the query of GET /inventory.
type InventoryRequest struct {
	MachineID string `form:"machine_id" validate:"required,max=64,excludesall=/?#%"` // vendon machine id
}
