package domain

import "time"

// EmployeeStatus represents the employment status of an employee
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "active"
	EmployeeStatusInactive   EmployeeStatus = "inactive"
	EmployeeStatusTerminated EmployeeStatus = "terminated"
)

// Employee represents an employee record within an organization
type Employee struct {
	ID           string
	OrgID        string
	EmployeeCode string
	FullName     string
	Email        string
	Department   string
	Position     string
	HireDate     *time.Time
	Status       EmployeeStatus
	CreatedAt    time.Time
}
