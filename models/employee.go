package models

type Role string

const (
	RoleBarista       Role = "barista"
	RoleSeniorBarista Role = "senior_barista"
)

func (r Role) Valid() bool {
	return r == RoleBarista || r == RoleSeniorBarista
}

// Label is the name shown on the dashboard.
func (r Role) Label() string {
	if r == RoleSeniorBarista {
		return "старший"
	}
	return "бариста"
}

// Employee is a barista registered at one of the branches.
type Employee struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
	RoleLabel string `json:"roleLabel"`
}

// EmployeeInput registers a new employee.
type EmployeeInput struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Role         Role   `json:"role" binding:"required"`
	CoffeeShopID int    `json:"coffeeShopId" binding:"required"`
}

// EmployeeEdit changes an existing employee. An empty password keeps the old one.
type EmployeeEdit struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Role      Role   `json:"role" binding:"required"`
	Password  string `json:"password"`
}

// Assignment moves an employee to a branch.
type Assignment struct {
	CoffeeShopID  int  `json:"coffeeShopId" binding:"required"`
	IsResponsible bool `json:"isResponsible"`
}
