package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/llm"
)

// Identity is the server-asserted caller context injected into every tool
// execution. Tools never accept employee or organization IDs from the model.
type Identity struct {
	OrgID      string
	EmployeeID string
}

// LeaveBalanceReader lists per-type leave allowances for one employee.
type LeaveBalanceReader interface {
	ListForEmployee(ctx context.Context, orgID, employeeID string, leaveType *domain.LeaveType) ([]*domain.LeaveBalance, error)
}

// LeaveRequestWriter persists new leave requests.
type LeaveRequestWriter interface {
	Create(ctx context.Context, req *domain.LeaveRequest) error
}

// EmployeeReader loads an employee profile scoped to its organization.
type EmployeeReader interface {
	GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.Employee, error)
}

// DocumentWriter persists generated document metadata records.
type DocumentWriter interface {
	Create(ctx context.Context, doc *domain.Document) error
}

// PolicyQuerier is the semantic-search surface the search_policies tool
// needs from the RAG pipeline.
type PolicyQuerier interface {
	Query(ctx context.Context, question, orgID string, topK int) ([]*domain.RetrievedChunk, error)
}

// ActivePolicyReader fetches a single active policy with its full text.
type ActivePolicyReader interface {
	GetActiveByIDForOrg(ctx context.Context, id, orgID string) (*domain.PolicyDocument, error)
}

// DocumentRenderer optionally renders a generated document to a stored file
// and returns its path. A nil renderer leaves FilePath empty.
type DocumentRenderer interface {
	Render(ctx context.Context, doc *domain.Document, employee *domain.Employee) (string, error)
}

// Tool names as declared to the model.
const (
	ToolCheckLeaveBalance  = "check_leave_balance"
	ToolSubmitLeaveRequest = "submit_leave_request"
	ToolGetEmployeeInfo    = "get_employee_info"
	ToolSearchPolicies     = "search_policies"
	ToolGenerateDocument   = "generate_document"
	ToolGetPolicyDetails   = "get_policy_details"
)

// searchPoliciesTopK is fixed for tool-originated searches.
const searchPoliciesTopK = 5

type toolHandler func(ctx context.Context, identity Identity, args map[string]any) (any, error)

// ToolRegistry declares the HR tool catalog to the model and executes tool
// calls against the HR services. Every tool runs under the caller's identity
// and organization.
type ToolRegistry struct {
	balances  LeaveBalanceReader
	requests  LeaveRequestWriter
	employees EmployeeReader
	documents DocumentWriter
	policies  ActivePolicyReader
	rag       PolicyQuerier
	renderer  DocumentRenderer
	uuidGen   UUIDGenerator

	handlers map[string]toolHandler
}

// NewToolRegistry creates a new ToolRegistry instance. renderer may be nil;
// generate_document then records metadata without producing a file.
func NewToolRegistry(
	balances LeaveBalanceReader,
	requests LeaveRequestWriter,
	employees EmployeeReader,
	documents DocumentWriter,
	policies ActivePolicyReader,
	rag PolicyQuerier,
	renderer DocumentRenderer,
) *ToolRegistry {
	r := &ToolRegistry{
		balances:  balances,
		requests:  requests,
		employees: employees,
		documents: documents,
		policies:  policies,
		rag:       rag,
		renderer:  renderer,
		uuidGen:   &DefaultUUIDGenerator{},
	}
	r.handlers = map[string]toolHandler{
		ToolCheckLeaveBalance:  r.checkLeaveBalance,
		ToolSubmitLeaveRequest: r.submitLeaveRequest,
		ToolGetEmployeeInfo:    r.getEmployeeInfo,
		ToolSearchPolicies:     r.searchPolicies,
		ToolGenerateDocument:   r.generateDocument,
		ToolGetPolicyDetails:   r.getPolicyDetails,
	}
	return r
}

// Definitions returns the tool catalog in the shape the chat client declares
// to the model.
func (r *ToolRegistry) Definitions() []llm.Tool {
	return []llm.Tool{
		{
			Name:        ToolCheckLeaveBalance,
			Description: "Check an employee's leave balance. Returns remaining days for each leave type.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"leave_type": map[string]any{
						"type":        "string",
						"description": "Optional leave type filter (annual, sick, maternity, paternity, unpaid). If omitted, returns all types.",
					},
				},
				"required": []string{},
			},
		},
		{
			Name:        ToolSubmitLeaveRequest,
			Description: "Submit a leave request on behalf of the employee.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"leave_type": map[string]any{"type": "string", "description": "Type of leave (annual, sick, maternity, paternity, unpaid)"},
					"start_date": map[string]any{"type": "string", "description": "Start date in YYYY-MM-DD format"},
					"end_date":   map[string]any{"type": "string", "description": "End date in YYYY-MM-DD format"},
					"reason":     map[string]any{"type": "string", "description": "Reason for the leave request"},
				},
				"required": []string{"leave_type", "start_date", "end_date"},
			},
		},
		{
			Name:        ToolGetEmployeeInfo,
			Description: "Get the current employee's profile information (name, department, position, hire date, etc.).",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
		{
			Name:        ToolSearchPolicies,
			Description: "Search the organization's HR policy documents using semantic search. Use this to answer questions about company policies, benefits, rules, and procedures.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "The search query describing what policy information is needed"},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        ToolGenerateDocument,
			Description: "Generate an HR document for the employee (e.g., resignation letter, experience letter, salary certificate, NOC).",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_type": map[string]any{
						"type":        "string",
						"description": "Type of document to generate (contract, resignation_letter, experience_letter, salary_certificate, noc)",
					},
				},
				"required": []string{"document_type"},
			},
		},
		{
			Name:        ToolGetPolicyDetails,
			Description: "Get the full text of a specific policy document by its ID.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"policy_id": map[string]any{"type": "string", "description": "The UUID of the policy document"},
				},
				"required": []string{"policy_id"},
			},
		},
	}
}

// Execute runs one tool call and always returns a JSON string: the tool
// result on success, or an {"error": ...} object on any failure including an
// unknown tool name or a handler panic. It never returns a Go error because
// a failed tool result still goes back to the model as a tool message.
func (r *ToolRegistry) Execute(ctx context.Context, identity Identity, toolName, argumentsJSON string) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("tool %s panicked: %v", toolName, rec)
			result = errorJSON(fmt.Sprintf("tool execution failed: %v", rec))
		}
	}()

	handler, ok := r.handlers[toolName]
	if !ok {
		return errorJSON("Unknown tool: " + toolName)
	}

	args := make(map[string]any)
	if argumentsJSON != "" {
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return errorJSON("invalid tool arguments: " + err.Error())
		}
	}

	out, err := handler(ctx, identity, args)
	if err != nil {
		log.Printf("tool %s failed: %v", toolName, err)
		return errorJSON(err.Error())
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return errorJSON("failed to encode tool result: " + err.Error())
	}
	return string(encoded)
}

func errorJSON(message string) string {
	encoded, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return `{"error":"tool execution failed"}`
	}
	return string(encoded)
}

func (r *ToolRegistry) checkLeaveBalance(ctx context.Context, identity Identity, args map[string]any) (any, error) {
	var filter *domain.LeaveType
	if raw := stringArg(args, "leave_type"); raw != "" {
		lt := domain.LeaveType(raw)
		if err := domain.ValidateLeaveType(lt); err != nil {
			return nil, err
		}
		filter = &lt
	}

	balances, err := r.balances.ListForEmployee(ctx, identity.OrgID, identity.EmployeeID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(balances))
	for _, b := range balances {
		out = append(out, map[string]any{
			"leave_type":     b.LeaveType,
			"total_days":     b.TotalDays,
			"used_days":      b.UsedDays,
			"remaining_days": b.RemainingDays(),
			"year":           b.Year,
		})
	}
	return map[string]any{"balances": out}, nil
}

func (r *ToolRegistry) submitLeaveRequest(ctx context.Context, identity Identity, args map[string]any) (any, error) {
	leaveType := domain.LeaveType(stringArg(args, "leave_type"))
	if err := domain.ValidateLeaveType(leaveType); err != nil {
		return nil, err
	}

	startDate, err := parseDateArg(args, "start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateArg(args, "end_date")
	if err != nil {
		return nil, err
	}
	req := &domain.LeaveRequest{
		ID:         r.uuidGen.NewString(),
		OrgID:      identity.OrgID,
		EmployeeID: identity.EmployeeID,
		LeaveType:  leaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     domain.LeaveRequestStatusPending,
		Reason:     stringArg(args, "reason"),
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	return map[string]any{
		"status":     "submitted",
		"request_id": req.ID,
		"leave_type": req.LeaveType,
		"start_date": req.StartDate.Format("2006-01-02"),
		"end_date":   req.EndDate.Format("2006-01-02"),
	}, nil
}

func (r *ToolRegistry) getEmployeeInfo(ctx context.Context, identity Identity, _ map[string]any) (any, error) {
	emp, err := r.employees.GetByIDForOrg(ctx, identity.EmployeeID, identity.OrgID)
	if err != nil {
		return nil, err
	}

	var hireDate any
	if emp.HireDate != nil {
		hireDate = emp.HireDate.Format("2006-01-02")
	}
	return map[string]any{
		"employee_code": emp.EmployeeCode,
		"full_name":     emp.FullName,
		"email":         emp.Email,
		"department":    emp.Department,
		"position":      emp.Position,
		"hire_date":     hireDate,
		"status":        emp.Status,
	}, nil
}

func (r *ToolRegistry) searchPolicies(ctx context.Context, identity Identity, args map[string]any) (any, error) {
	query := stringArg(args, "query")
	if query == "" {
		return nil, domain.ErrMissingRequiredField
	}

	chunks, err := r.rag.Query(ctx, query, identity.OrgID, searchPoliciesTopK)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return map[string]any{"results": []any{}, "message": "No matching policies found."}, nil
	}

	results := make([]map[string]any, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, map[string]any{
			"policy_document_id": c.PolicyID,
			"text":               c.ChunkText,
			"similarity":         math.Round(c.Similarity*1000) / 1000,
		})
	}
	return map[string]any{"results": results}, nil
}

func (r *ToolRegistry) generateDocument(ctx context.Context, identity Identity, args map[string]any) (any, error) {
	docType := domain.DocumentType(stringArg(args, "document_type"))
	if docType == "" {
		return nil, domain.ErrMissingRequiredField
	}
	title := domain.DocumentTitle(docType)

	doc := &domain.Document{
		ID:           r.uuidGen.NewString(),
		OrgID:        identity.OrgID,
		EmployeeID:   identity.EmployeeID,
		DocumentType: string(docType),
		Title:        title,
		FromTemplate: true,
		CreatedAt:    time.Now().UTC(),
	}

	if r.renderer != nil {
		emp, err := r.employees.GetByIDForOrg(ctx, identity.EmployeeID, identity.OrgID)
		if err == nil {
			path, renderErr := r.renderer.Render(ctx, doc, emp)
			if renderErr != nil {
				// The metadata record is still useful without a file.
				log.Printf("document render failed for %s: %v", doc.ID, renderErr)
			} else {
				doc.FilePath = path
			}
		}
	}

	if err := r.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	return map[string]any{
		"status":      "generated",
		"document_id": doc.ID,
		"title":       title,
		"message":     title + " has been generated successfully.",
	}, nil
}

func (r *ToolRegistry) getPolicyDetails(ctx context.Context, identity Identity, args map[string]any) (any, error) {
	policyID := stringArg(args, "policy_id")
	if policyID == "" {
		return nil, domain.ErrMissingRequiredField
	}

	policy, err := r.policies.GetActiveByIDForOrg(ctx, policyID, identity.OrgID)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"id":       policy.ID,
		"title":    policy.Title,
		"content":  policy.Content,
		"category": policy.Category,
	}, nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func parseDateArg(args map[string]any, key string) (time.Time, error) {
	raw := stringArg(args, key)
	if raw == "" {
		return time.Time{}, domain.NewDomainError(domain.ErrCodeValidation, key+" is required")
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, domain.NewDomainError(domain.ErrCodeValidation, key+" must be in YYYY-MM-DD format")
	}
	return t, nil
}
