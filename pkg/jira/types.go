// Package jira exposes the JIRA data operations served from the warehouse:
// issue listing, issue details, project summaries, components, and
// multi-branch issue enrichment.
package jira

// Issue is one row of the issue listing.
type Issue struct {
	ID          string   `json:"id"`
	Key         string   `json:"key"`
	Project     string   `json:"project"`
	IssueNumber any      `json:"issue_number"`
	IssueType   string   `json:"issue_type"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	Resolution  string   `json:"resolution"`
	Created     any      `json:"created"`
	Updated     any      `json:"updated"`
	DueDate     any      `json:"due_date"`
	Resolved    any      `json:"resolution_date"`
	Votes       any      `json:"votes"`
	Watches     any      `json:"watches"`
	Environment any      `json:"environment"`
	Component   any      `json:"component"`
	FixVersion  any      `json:"fix_version"`
	Labels      []string `json:"labels"`
}

// IssueList is the issue listing response.
type IssueList struct {
	Issues         []Issue        `json:"issues"`
	TotalReturned  int            `json:"total_returned"`
	FiltersApplied map[string]any `json:"filters_applied"`
}

// IssueDetail carries the full field set for a single issue plus its
// enrichment branches.
type IssueDetail struct {
	Issue
	TimeOriginalEstimate any            `json:"time_original_estimate"`
	TimeEstimate         any            `json:"time_estimate"`
	TimeSpent            any            `json:"time_spent"`
	WorkflowID           any            `json:"workflow_id"`
	Security             any            `json:"security"`
	Archived             any            `json:"archived"`
	ArchivedDate         any            `json:"archived_date"`
	Comments             []Comment      `json:"comments"`
	Links                []Link         `json:"links"`
	StatusChanges        []StatusChange `json:"status_changes"`
}

// Comment is one issue comment.
type Comment struct {
	ID        any    `json:"id"`
	RoleLevel any    `json:"role_level"`
	Body      string `json:"body"`
	Created   any    `json:"created"`
	Updated   any    `json:"updated"`
}

// Link is one direction of an issue link. A single link row yields an
// "outward" entry on the source issue and an "inward" entry on the
// destination issue.
type Link struct {
	LinkID              any    `json:"link_id"`
	Relationship        string `json:"relationship"`
	LinkName            string `json:"link_name"`
	Description         string `json:"description"`
	RelatedIssueID      string `json:"related_issue_id"`
	RelatedIssueKey     string `json:"related_issue_key"`
	RelatedIssueSummary string `json:"related_issue_summary"`
}

// StatusChange is one workflow transition from the issue history.
type StatusChange struct {
	IssueKey         string `json:"issue_key"`
	ChangeTimestamp  any    `json:"change_timestamp"`
	FromStatus       string `json:"from_status"`
	ToStatus         string `json:"to_status"`
	StatusTransition string `json:"status_transition"`
}

// Component is one row of the component listing.
type Component struct {
	ID           any    `json:"id"`
	Project      any    `json:"project"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	URL          any    `json:"url"`
	Lead         any    `json:"lead"`
	AssigneeType any    `json:"assignee_type"`
	Archived     any    `json:"archived"`
	Deleted      any    `json:"deleted"`
	Synced       any    `json:"synced"`
}

// ComponentList is the component listing response.
type ComponentList struct {
	Components     []Component    `json:"components"`
	TotalReturned  int            `json:"total_returned"`
	FiltersApplied map[string]any `json:"filters_applied"`
}

// ProjectStats aggregates one project's issue counts.
type ProjectStats struct {
	TotalIssues int            `json:"total_issues"`
	Statuses    map[string]int `json:"statuses"`
	Priorities  map[string]int `json:"priorities"`
}

// ProjectSummary is the cross-project aggregate response.
type ProjectSummary struct {
	TotalIssues   int                      `json:"total_issues"`
	TotalProjects int                      `json:"total_projects"`
	Projects      map[string]*ProjectStats `json:"projects"`
}

// EnrichmentResult groups the four enrichment branches, each keyed by the
// entity the branch reports on. An absent key means "no related records".
type EnrichmentResult struct {
	Labels        map[string][]string       `json:"labels"`
	Comments      map[string][]Comment      `json:"comments"`
	Links         map[string][]Link         `json:"links"`
	StatusChanges map[string][]StatusChange `json:"status_changes"`
}
