package events

const (
	EmployeeCreatedTopic = "gaha.employee.created"
	EmployeeCreatedType  = "employee.created"
)

type EmployeeCreatedEvent struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}
