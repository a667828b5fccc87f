package jira

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/snowflake"
)

// ErrIssueNotFound is returned when no issue matches the requested key.
var ErrIssueNotFound = fmt.Errorf("issue not found")

// Service executes the JIRA data operations through the gateway.
type Service struct {
	gw     *snowflake.Gateway
	logger zerolog.Logger
}

// NewService creates a service, validating every query's column mapping so
// a drifted table fails at startup instead of at decode time.
func NewService(gw *snowflake.Gateway, logger zerolog.Logger) (*Service, error) {
	if err := validateMappings(); err != nil {
		return nil, err
	}
	return &Service{
		gw:     gw,
		logger: logger.With().Str("component", "jira").Logger(),
	}, nil
}

// ListIssuesParams filters the issue listing. Zero values mean "no filter".
type ListIssuesParams struct {
	Project       string
	IssueType     string
	Status        string
	Priority      string
	SearchText    string
	Limit         int
	TokenOverride string
}

// ListIssues returns issues matching the filters, newest first, enriched
// with their labels.
func (s *Service) ListIssues(ctx context.Context, params ListIssuesParams) (*IssueList, error) {
	if params.Limit <= 0 {
		params.Limit = 50
	}

	var conditions []string
	if params.Project != "" {
		conditions = append(conditions, fmt.Sprintf("PROJECT = '%s'", snowflake.Sanitize(strings.ToUpper(params.Project))))
	}
	if params.IssueType != "" {
		conditions = append(conditions, fmt.Sprintf("ISSUETYPE = '%s'", snowflake.Sanitize(params.IssueType)))
	}
	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("ISSUESTATUS = '%s'", snowflake.Sanitize(params.Status)))
	}
	if params.Priority != "" {
		conditions = append(conditions, fmt.Sprintf("PRIORITY = '%s'", snowflake.Sanitize(params.Priority)))
	}
	if params.SearchText != "" {
		needle := snowflake.Sanitize(strings.ToLower(params.SearchText))
		conditions = append(conditions,
			fmt.Sprintf("(LOWER(SUMMARY) LIKE '%%%s%%' OR LOWER(DESCRIPTION) LIKE '%%%s%%')", needle, needle))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	sql := fmt.Sprintf(`SELECT %s FROM JIRA_ISSUE_NON_PII %s ORDER BY CREATED DESC LIMIT %d`,
		selectList(issueListColumns), whereClause, params.Limit)

	rows, err := s.gw.Execute(ctx, sql, snowflake.ExecOptions{UseCache: true, TokenOverride: params.TokenOverride})
	if err != nil {
		return nil, err
	}

	records := snowflake.DecodeRows(names(issueListColumns), rows, s.gw.Config().RowDecodeWorkers)

	issues := make([]Issue, 0, len(records))
	issueIDs := make([]string, 0, len(records))
	for _, record := range records {
		issue := issueFromRecord(record)
		issues = append(issues, issue)
		if issue.ID != "" {
			issueIDs = append(issueIDs, issue.ID)
		}
	}

	labels := s.issueLabels(ctx, issueIDs, params.TokenOverride)
	for i := range issues {
		issues[i].Labels = labelsOrEmpty(labels, issues[i].ID)
	}

	return &IssueList{
		Issues:        issues,
		TotalReturned: len(issues),
		FiltersApplied: map[string]any{
			"project":     params.Project,
			"issue_type":  params.IssueType,
			"status":      params.Status,
			"priority":    params.Priority,
			"search_text": params.SearchText,
			"limit":       params.Limit,
		},
	}, nil
}

// IssueDetails returns the full field set for one issue, enriched with
// labels, comments, links, and status changes.
func (s *Service) IssueDetails(ctx context.Context, issueKey, tokenOverride string) (*IssueDetail, error) {
	sql := fmt.Sprintf(`SELECT %s FROM JIRA_ISSUE_NON_PII WHERE ISSUE_KEY = '%s' LIMIT 1`,
		selectList(issueDetailColumns), snowflake.Sanitize(issueKey))

	rows, err := s.gw.Execute(ctx, sql, snowflake.ExecOptions{UseCache: true, TokenOverride: tokenOverride})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrIssueNotFound, issueKey)
	}

	record := snowflake.DecodeRow(names(issueDetailColumns), rows[0])
	detail := &IssueDetail{
		Issue:                issueFromRecord(record),
		TimeOriginalEstimate: record["TIMEORIGINALESTIMATE"],
		TimeEstimate:         record["TIMEESTIMATE"],
		TimeSpent:            record["TIMESPENT"],
		WorkflowID:           record["WORKFLOW_ID"],
		Security:             record["SECURITY"],
		Archived:             record["ARCHIVED"],
		ArchivedDate:         record["ARCHIVEDDATE"],
	}
	detail.Description = asString(record["DESCRIPTION"])

	enrichment := s.Enrich(ctx, []string{detail.ID}, tokenOverride)
	detail.Labels = labelsOrEmpty(enrichment.Labels, detail.ID)
	detail.Comments = enrichment.Comments[detail.ID]
	detail.Links = enrichment.Links[detail.ID]
	// status changes come back keyed by issue key, not id
	detail.StatusChanges = enrichment.StatusChanges[detail.Key]
	if detail.Comments == nil {
		detail.Comments = []Comment{}
	}
	if detail.Links == nil {
		detail.Links = []Link{}
	}
	if detail.StatusChanges == nil {
		detail.StatusChanges = []StatusChange{}
	}

	return detail, nil
}

// Summary aggregates issue counts per project, status, and priority.
func (s *Service) Summary(ctx context.Context, tokenOverride string) (*ProjectSummary, error) {
	sql := fmt.Sprintf(`SELECT %s FROM JIRA_ISSUE_NON_PII GROUP BY PROJECT, ISSUESTATUS, PRIORITY ORDER BY PROJECT, ISSUESTATUS, PRIORITY`,
		selectList(projectSummaryColumns))

	rows, err := s.gw.Execute(ctx, sql, snowflake.ExecOptions{UseCache: true, TokenOverride: tokenOverride})
	if err != nil {
		return nil, err
	}

	summary := &ProjectSummary{Projects: make(map[string]*ProjectStats)}
	for _, row := range rows {
		record := snowflake.DecodeRow(names(projectSummaryColumns), row)
		if len(record) == 0 {
			continue
		}

		project := asString(record["PROJECT"])
		status := asString(record["ISSUESTATUS"])
		priority := asString(record["PRIORITY"])
		count := asInt(record["COUNT"])

		stats, ok := summary.Projects[project]
		if !ok {
			stats = &ProjectStats{
				Statuses:   make(map[string]int),
				Priorities: make(map[string]int),
			}
			summary.Projects[project] = stats
		}

		stats.TotalIssues += count
		stats.Statuses[status] += count
		stats.Priorities[priority] += count
		summary.TotalIssues += count
	}
	summary.TotalProjects = len(summary.Projects)

	return summary, nil
}

// ListComponentsParams filters the component listing.
type ListComponentsParams struct {
	Project       string
	Archived      string
	Deleted       string
	SearchText    string
	Limit         int
	TokenOverride string
}

// ListComponents returns components matching the filters, sorted by name.
func (s *Service) ListComponents(ctx context.Context, params ListComponentsParams) (*ComponentList, error) {
	if params.Limit <= 0 {
		params.Limit = 50
	}

	var conditions []string
	if params.Project != "" {
		conditions = append(conditions, fmt.Sprintf("PROJECT = '%s'", snowflake.Sanitize(params.Project)))
	}
	if params.Archived != "" {
		conditions = append(conditions, fmt.Sprintf("ARCHIVED = '%s'", snowflake.Sanitize(strings.ToUpper(params.Archived))))
	}
	if params.Deleted != "" {
		conditions = append(conditions, fmt.Sprintf("DELETED = '%s'", snowflake.Sanitize(strings.ToUpper(params.Deleted))))
	}
	if params.SearchText != "" {
		needle := snowflake.Sanitize(strings.ToLower(params.SearchText))
		conditions = append(conditions,
			fmt.Sprintf("(LOWER(CNAME) LIKE '%%%s%%' OR LOWER(DESCRIPTION) LIKE '%%%s%%')", needle, needle))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	sql := fmt.Sprintf(`SELECT %s FROM JIRA_COMPONENT_RHAI %s ORDER BY CNAME ASC LIMIT %d`,
		selectList(componentColumns), whereClause, params.Limit)

	rows, err := s.gw.Execute(ctx, sql, snowflake.ExecOptions{UseCache: true, TokenOverride: params.TokenOverride})
	if err != nil {
		return nil, err
	}

	records := snowflake.DecodeRows(names(componentColumns), rows, s.gw.Config().RowDecodeWorkers)
	components := make([]Component, 0, len(records))
	for _, record := range records {
		components = append(components, Component{
			ID:           record["ID"],
			Project:      record["PROJECT"],
			Name:         asString(record["CNAME"]),
			Description:  asString(record["DESCRIPTION"]),
			URL:          record["URL"],
			Lead:         record["LEAD"],
			AssigneeType: record["ASSIGNEETYPE"],
			Archived:     record["ARCHIVED"],
			Deleted:      record["DELETED"],
			Synced:       record["_FIVETRAN_SYNCED"],
		})
	}

	return &ComponentList{
		Components:    components,
		TotalReturned: len(components),
		FiltersApplied: map[string]any{
			"project":     params.Project,
			"archived":    params.Archived,
			"deleted":     params.Deleted,
			"search_text": params.SearchText,
			"limit":       params.Limit,
		},
	}, nil
}

// issueFromRecord maps a decoded record onto the listing fields. The
// truncated description is preferred when present.
func issueFromRecord(record map[string]any) Issue {
	description := asString(record["DESCRIPTION_TRUNCATED"])
	if description == "" {
		description = asString(record["DESCRIPTION"])
	}

	return Issue{
		ID:          asString(record["ID"]),
		Key:         asString(record["ISSUE_KEY"]),
		Project:     asString(record["PROJECT"]),
		IssueNumber: record["ISSUENUM"],
		IssueType:   asString(record["ISSUETYPE"]),
		Summary:     asString(record["SUMMARY"]),
		Description: description,
		Priority:    asString(record["PRIORITY"]),
		Status:      asString(record["ISSUESTATUS"]),
		Resolution:  asString(record["RESOLUTION"]),
		Created:     record["CREATED"],
		Updated:     record["UPDATED"],
		DueDate:     record["DUEDATE"],
		Resolved:    record["RESOLUTIONDATE"],
		Votes:       record["VOTES"],
		Watches:     record["WATCHES"],
		Environment: record["ENVIRONMENT"],
		Component:   record["COMPONENT"],
		FixVersion:  record["FIXFOR"],
		Labels:      []string{},
	}
}

func labelsOrEmpty(labels map[string][]string, id string) []string {
	if l, ok := labels[id]; ok {
		return l
	}
	return []string{}
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		var out int
		fmt.Sscanf(n, "%d", &out)
		return out
	default:
		return 0
	}
}
