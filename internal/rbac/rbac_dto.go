package rbac

type EnforceRequest struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
