package model

import "time"

// Operation is a plugin action a user can request across sites.
type Operation string

const (
	OpActivate      Operation = "activate"
	OpDeactivate    Operation = "deactivate"
	OpUpdate        Operation = "update"
	OpInstall       Operation = "install"
	OpChangeVersion Operation = "change-version"
	OpRemove        Operation = "remove"
)

// Operations lists every supported operation.
var Operations = []Operation{OpActivate, OpDeactivate, OpUpdate, OpInstall, OpChangeVersion, OpRemove}

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	for _, o := range Operations {
		if o == op {
			return true
		}
	}
	return false
}

// Local reports whether the operation mutates brand site state directly
// instead of going through a pull request.
func (op Operation) Local() bool {
	return op == OpActivate || op == OpDeactivate || op == OpRemove
}

// ActionRequest is a user request to run an operation on a set of sites.
type ActionRequest struct {
	Action         Operation `json:"action" validate:"required"`
	Slug           string    `json:"slug" validate:"required"`
	Sites          []string  `json:"sites" validate:"required,min=1,dive,required"`
	Version        string    `json:"plugin_version"`
	PluginType     string    `json:"plugin_type" validate:"omitempty,oneof=public private"`
	PluginPathInfo string    `json:"plugin_path_info"`
	// ZipURL is the presigned archive of a private plugin.
	ZipURL string `json:"zip_url,omitempty"`
}

// Outcome of a single per-site execution.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
)

// ExecutionResult is the outcome of one operation on one site.
type ExecutionResult struct {
	Site      string    `json:"site"`
	SiteName  string    `json:"siteName,omitempty"`
	Operation Operation `json:"action"`
	Slug      string    `json:"slug"`
	Outcome   string    `json:"status"`
	Ticket    string    `json:"ticket,omitempty"`
	Run       *RunRef   `json:"run,omitempty"`
	Response  any       `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ActionReport aggregates the per-site results of one request. Success is
// true iff there are no errors.
type ActionReport struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Output  []ExecutionResult `json:"output"`
	Errors  []ExecutionResult `json:"errors"`
}

// NewActionReport splits results into output and errors.
func NewActionReport(message string, results []ExecutionResult) ActionReport {
	r := ActionReport{
		Message: message,
		Output:  []ExecutionResult{},
		Errors:  []ExecutionResult{},
	}
	for _, res := range results {
		if res.Outcome == OutcomeError {
			r.Errors = append(r.Errors, res)
			continue
		}
		r.Output = append(r.Output, res)
	}
	r.Success = len(r.Errors) == 0
	return r
}

// BulkItem is one plugin of a bulk update request.
type BulkItem struct {
	Slug       string   `json:"slug" validate:"required"`
	Version    string   `json:"version"`
	PluginType string   `json:"plugin_type"`
	Sites      []string `json:"sites"`
}

// BulkReport groups bulk results by site name.
type BulkReport struct {
	Success  bool                         `json:"success"`
	Message  string                       `json:"message"`
	Response map[string][]ExecutionResult `json:"response"`
	Errors   []ExecutionResult            `json:"errors"`
}

// PluginRef names a plugin version to apply to sites.
type PluginRef struct {
	Slug    string `json:"slug" validate:"required"`
	Version string `json:"version"`
}

// ApplyRequest pushes public plugins to sites.
type ApplyRequest struct {
	Sites      []Site      `json:"sites" validate:"required,min=1"`
	Plugins    []PluginRef `json:"plugins" validate:"required,min=1,dive"`
	PluginType string      `json:"plugin_type"`
}

// ApplyPrivateRequest pushes uploaded private plugin archives to sites.
type ApplyPrivateRequest struct {
	Sites   []Site   `json:"sites" validate:"required,min=1"`
	Plugins []string `json:"plugins" validate:"required,min=1,dive,required"`
}

// ApplyReport is returned by the apply endpoints.
type ApplyReport struct {
	Success    bool              `json:"success"`
	CreatedPRs []ExecutionResult `json:"created_prs"`
	Logs       []ExecutionResult `json:"logs"`
}

// Ticket identifies one workflow dispatch until its run id is known.
type Ticket struct {
	ID           string    `json:"ticket"`
	Repo         string    `json:"repo"`
	Workflow     string    `json:"workflow"`
	Branch       string    `json:"branch"`
	Plugin       string    `json:"plugin,omitempty"`
	Version      string    `json:"version,omitempty"`
	PluginType   string    `json:"plugin_type,omitempty"`
	SiteName     string    `json:"siteName,omitempty"`
	DispatchedAt time.Time `json:"dispatched_at"`
	Tagged       bool      `json:"tagged,omitempty"` // ticket id was sent as a workflow input
	Run          *RunRef   `json:"run,omitempty"`
}

// WorkflowURL is the page of the dispatched workflow.
func (t Ticket) WorkflowURL() string {
	return "https://github.com/" + t.Repo + "/actions/workflows/" + t.Workflow
}

// RunRef points at a resolved workflow run.
type RunRef struct {
	ID  int64  `json:"run_id"`
	URL string `json:"run_url"`
}

// Resolution is the preview of an operation for one plugin.
type Resolution struct {
	Operation      Operation       `json:"action"`
	Slug           string          `json:"slug"`
	Targets        []Target        `json:"targets"`
	Versions       []VersionOption `json:"versions"`
	DefaultVersion string          `json:"default_version,omitempty"`
	Notice         string          `json:"notice,omitempty"`
}

// Target is one eligible site of a resolution.
type Target struct {
	SiteURL  string `json:"site_url"`
	SiteName string `json:"site_name"`
	State    string `json:"state"`
	Version  string `json:"version,omitempty"`
}

// VersionOption is one selectable plugin version.
type VersionOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DispatchInfo describes one workflow dispatch in execution results.
type DispatchInfo struct {
	Success      bool   `json:"success"`
	Repo         string `json:"repo"`
	Branch       string `json:"branch"`
	Plugin       string `json:"plugin"`
	Version      string `json:"version"`
	Message      string `json:"message"`
	ResponseCode int    `json:"response_code"`
	WorkflowURL  string `json:"workflow_url"`
	RunID        int64  `json:"run_id,omitempty"`
	RunURL       string `json:"run_url,omitempty"`
	SiteName     string `json:"siteName"`
	Pending      bool   `json:"pending,omitempty"`
}
