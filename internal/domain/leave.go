package domain

import "time"

// LeaveType represents a category of leave
type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "annual"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeMaternity LeaveType = "maternity"
	LeaveTypePaternity LeaveType = "paternity"
	LeaveTypeUnpaid    LeaveType = "unpaid"
)

// ValidateLeaveType checks that the given value is a known leave type
func ValidateLeaveType(t LeaveType) error {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeMaternity, LeaveTypePaternity, LeaveTypeUnpaid:
		return nil
	default:
		return ErrInvalidLeaveType
	}
}

// LeaveRequestStatus represents the approval state of a leave request
type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

// LeaveBalance tracks an employee's allowance for one leave type in one year
type LeaveBalance struct {
	ID         string
	OrgID      string
	EmployeeID string
	LeaveType  LeaveType
	TotalDays  float64
	UsedDays   float64
	Year       int
}

// RemainingDays returns the unused portion of the allowance
func (b *LeaveBalance) RemainingDays() float64 {
	return b.TotalDays - b.UsedDays
}

// LeaveRequest is a pending or resolved request for time off
type LeaveRequest struct {
	ID         string
	OrgID      string
	EmployeeID string
	LeaveType  LeaveType
	StartDate  time.Time
	EndDate    time.Time
	Status     LeaveRequestStatus
	Reason     string
	CreatedAt  time.Time
}
