package employee

type CreateEmployeeRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=12"`
	FirstName string `json:"firstname" binding:"required"`
	LastName  string `json:"lastname" binding:"required"`
	Position  string `json:"position" binding:"required"`
	Role      string `json:"role" binding:"omitempty,oneof=ADMIN SCHEDULER CAREGIVER"`
}

type UpdateEmployeeRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"omitempty,min=12"` // blank keeps the current hash
	FirstName string `json:"firstname" binding:"required"`
	LastName  string `json:"lastname" binding:"required"`
	Position  string `json:"position" binding:"required"`
	Role      string `json:"role" binding:"omitempty,oneof=ADMIN SCHEDULER CAREGIVER"`
}

type EmployeeResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Position    string `json:"position"`
	Role        string `json:"role"`
	TOTPEnabled bool   `json:"totp_enabled"`
}
