package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/repository"
	"github.com/hivehr/hivehr/internal/service"
)

func EmployeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employees",
		Long:  "Create and list employee records",
	}

	cmd.AddCommand(EmployeeCreateCmd())
	cmd.AddCommand(EmployeeListCmd())

	return cmd
}

func EmployeeCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new employee",
		Long:  "Create an employee record within an organization",
		RunE:  runEmployeeCreate,
	}

	cmd.Flags().StringP("org", "o", "", "Organization ID or name (required)")
	cmd.Flags().StringP("code", "c", "", "Employee code (required)")
	cmd.Flags().StringP("name", "n", "", "Full name (required)")
	cmd.Flags().StringP("email", "m", "", "Email address (required)")
	cmd.Flags().String("department", "", "Department")
	cmd.Flags().String("position", "", "Position")
	cmd.Flags().String("hire-date", "", "Hire date (YYYY-MM-DD)")
	cmd.Flags().StringP("output", "", "text", "Output format (text or json)")
	cmd.MarkFlagRequired("org")
	cmd.MarkFlagRequired("code")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runEmployeeCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	orgRef, _ := cmd.Flags().GetString("org")
	code, _ := cmd.Flags().GetString("code")
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	department, _ := cmd.Flags().GetString("department")
	position, _ := cmd.Flags().GetString("position")
	hireDateStr, _ := cmd.Flags().GetString("hire-date")
	outputFormat, _ := cmd.Flags().GetString("output")

	var hireDate *time.Time
	if hireDateStr != "" {
		parsed, err := time.Parse("2006-01-02", hireDateStr)
		if err != nil {
			return fmt.Errorf("invalid hire date %q (expected YYYY-MM-DD)", hireDateStr)
		}
		hireDate = &parsed
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	orgRepo := repository.NewOrgRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)

	orgID, err := resolveOrgID(ctx, orgRepo, orgRef)
	if err != nil {
		return err
	}

	uuidGen := &service.DefaultUUIDGenerator{}
	employee := &domain.Employee{
		ID:           uuidGen.NewString(),
		OrgID:        orgID,
		EmployeeCode: code,
		FullName:     name,
		Email:        email,
		Department:   department,
		Position:     position,
		HireDate:     hireDate,
		Status:       domain.EmployeeStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	if err := employeeRepo.Create(ctx, employee); err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":     employee.ID,
			"org_id": employee.OrgID,
			"code":   employee.EmployeeCode,
			"name":   employee.FullName,
			"email":  employee.Email,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Employee created: %s (%s)\n", employee.FullName, employee.ID)
	}

	return nil
}

func EmployeeListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees for an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			orgRef, _ := cmd.Flags().GetString("org")
			outputFormat, _ := cmd.Flags().GetString("output")
			return runEmployeeList(orgRef, outputFormat)
		},
	}

	cmd.Flags().StringP("org", "o", "", "Organization ID or name (required)")
	cmd.Flags().StringP("output", "", "text", "Output format (text or json)")
	cmd.MarkFlagRequired("org")

	return cmd
}

func runEmployeeList(orgRef, outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	orgRepo := repository.NewOrgRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)

	orgID, err := resolveOrgID(ctx, orgRepo, orgRef)
	if err != nil {
		return err
	}

	employees, err := employeeRepo.ListByOrg(ctx, orgID)
	if err != nil {
		return fmt.Errorf("failed to list employees: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(employees))
		for i, e := range employees {
			data[i] = map[string]interface{}{
				"id":         e.ID,
				"code":       e.EmployeeCode,
				"name":       e.FullName,
				"email":      e.Email,
				"department": e.Department,
				"position":   e.Position,
				"status":     e.Status,
			}
		}
		jsonBytes, _ := json.MarshalIndent(map[string]interface{}{"items": data}, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(employees) == 0 {
			fmt.Printf("No employees found for organization %s\n", orgID)
			return nil
		}
		fmt.Printf("Employees for organization %s:\n", orgID)
		for _, e := range employees {
			fmt.Printf("  %s: %s <%s> (%s, %s)\n", e.ID, e.FullName, e.Email, e.EmployeeCode, e.Status)
		}
	}

	return nil
}
