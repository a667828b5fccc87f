package jira

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/internal/testutil"
)

// issueRow builds one issue-listing row in SELECT order.
func issueRow(id, key, project, summary string) []any {
	return []any{
		id, key, project, "42", "1", summary,
		"truncated description", "full description", "2", "6", "1",
		"1753767533.658000000 1440", nil, nil, nil,
		0, 1, nil, nil, nil,
	}
}

func TestListIssues(t *testing.T) {
	mock := testutil.NewMockSnowflake()
	defer mock.Close()

	router := newStatementRouter()
	router.respond("JIRA_ISSUE_NON_PII", [][]any{
		issueRow("10001", "PROJ-1", "PROJ", "First issue"),
		issueRow("10002", "PROJ-2", "PROJ", "Second issue"),
	})
	router.respond("JIRA_LABEL_RHAI", [][]any{
		{"10001", "triaged"},
		{"10001", "backend"},
	})
	mock.SetHandler("/statements", router.handler)

	svc := newTestService(t, mock)
	list, err := svc.ListIssues(context.Background(), ListIssuesParams{Project: "proj", Limit: 50})
	if err != nil {
		t.Fatalf("ListIssues() error = %v", err)
	}

	if list.TotalReturned != 2 {
		t.Fatalf("TotalReturned = %d, want 2", list.TotalReturned)
	}

	first := list.Issues[0]
	if first.Key != "PROJ-1" || first.Summary != "First issue" {
		t.Errorf("issue = %+v, want decoded fields", first)
	}
	if first.Description != "truncated description" {
		t.Errorf("Description = %q, want truncated variant", first.Description)
	}
	if first.Created != "2025-07-30T05:38:53.658000+00:00" {
		t.Errorf("Created = %v, want decoded timestamp", first.Created)
	}
	if len(first.Labels) != 2 {
		t.Errorf("Labels = %v, want 2 labels", first.Labels)
	}
	if len(list.Issues[1].Labels) != 0 {
		t.Errorf("Labels = %v, want empty for unlabelled issue", list.Issues[1].Labels)
	}
}

func TestListIssues_FilterBuilding(t *testing.T) {
	mock := testutil.NewMockSnowflake()
	defer mock.Close()

	router := newStatementRouter()
	mock.SetHandler("/statements", router.handler)

	svc := newTestService(t, mock)
	_, err := svc.ListIssues(context.Background(), ListIssuesParams{
		Project:    "proj",
		Status:     "6",
		SearchText: "o'brien",
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("ListIssues() error = %v", err)
	}

	statements := router.seen()
	if len(statements) == 0 {
		t.Fatal("no statement submitted")
	}
	sql := statements[0]

	if !strings.Contains(sql, "PROJECT = 'PROJ'") {
		t.Errorf("project filter missing or not uppercased: %s", sql)
	}
	if !strings.Contains(sql, "ISSUESTATUS = '6'") {
		t.Errorf("status filter missing: %s", sql)
	}
	if !strings.Contains(sql, "o''brien") {
		t.Errorf("search text not sanitized: %s", sql)
	}
	if !strings.Contains(sql, "LIMIT 10") {
		t.Errorf("limit missing: %s", sql)
	}
}

func TestIssueDetails(t *testing.T) {
	mock := testutil.NewMockSnowflake()
	defer mock.Close()

	detailRow := []any{
		"10001", "PROJ-1", "PROJ", "42", "1", "First issue", "full description",
		"2", "6", "1", "1753767533.658000000 1440", nil, nil,
		nil, 0, 1, nil, nil, nil,
		3600, 1800, 900, "wf-1",
		nil, "N", nil,
	}

	router := newStatementRouter()
	router.respond("JIRA_ISSUE_NON_PII", [][]any{detailRow})
	router.respond("JIRA_LABEL_RHAI", [][]any{{"10001", "triaged"}})
	router.respond("JIRA_COMMENT_NON_PII", [][]any{
		{"c1", "10001", nil, "first comment", "1753767533.000000000", nil},
	})
	router.respond("JIRA_ISSUE_LINK_RHAI", [][]any{
		{"l1", "10001", "20002", "1", "blocks", "is blocked by", "blocks",
			"PROJ-1", "OTHER-2", "First issue", "Other issue"},
	})
	router.respond("JIRA_STATUS_CHANGE_RHAI", [][]any{
		{"PROJ-1", "1753767533.000000000", "New", "In Progress", "New -> In Progress"},
	})
	mock.SetHandler("/statements", router.handler)

	svc := newTestService(t, mock)
	detail, err := svc.IssueDetails(context.Background(), "PROJ-1", "")
	if err != nil {
		t.Fatalf("IssueDetails() error = %v", err)
	}

	if detail.Key != "PROJ-1" || detail.Description != "full description" {
		t.Errorf("detail = %+v, want decoded fields", detail.Issue)
	}
	if len(detail.Labels) != 1 || detail.Labels[0] != "triaged" {
		t.Errorf("Labels = %v", detail.Labels)
	}
	if len(detail.Comments) != 1 || detail.Comments[0].Body != "first comment" {
		t.Errorf("Comments = %v", detail.Comments)
	}
	if len(detail.Links) != 1 || detail.Links[0].Relationship != "outward" {
		t.Errorf("Links = %v", detail.Links)
	}
	if len(detail.StatusChanges) != 1 || detail.StatusChanges[0].ToStatus != "In Progress" {
		t.Errorf("StatusChanges = %v", detail.StatusChanges)
	}
}

func TestIssueDetails_NotFound(t *testing.T) {
	mock := testutil.NewMockSnowflake()
	defer mock.Close()

	router := newStatementRouter()
	mock.SetHandler("/statements", router.handler)

	svc := newTestService(t, mock)
	_, err := svc.IssueDetails(context.Background(), "PROJ-404", "")
	if !errors.Is(err, ErrIssueNotFound) {
		t.Fatalf("error = %v, want ErrIssueNotFound", err)
	}
}

func TestIssueDetails_KeySanitized(t *testing.T) {
	mock := testutil.NewMockSnowflake()
	defer mock.Close()

	router := newStatementRouter()
	mock.SetHandler("/statements", router.handler)

	svc := newTestService(t, mock)
	_, _ = svc.IssueDetails(context.Background(), "PROJ-1'; DROP TABLE x; --", "")

	statements := router.seen()
	if len(statements) == 0 {
		t.Fatal("no statement submitted")
	}
	if !strings.Contains(statements[0], "PROJ-1''; DROP TABLE x; --") {
		t.Errorf("issue key not sanitized: %s", statements[0])
	}
}

func TestSummary(t *testing.T) {
	mock := testutil.NewMockSnowflake()
	defer mock.Close()

	router := newStatementRouter()
	router.respond("GROUP BY PROJECT", [][]any{
		{"PROJ", "6", "2", 10},
		{"PROJ", "1", "2", 5},
		{"OTHER", "6", "3", 7},
	})
	mock.SetHandler("/statements", router.handler)

	svc := newTestService(t, mock)
	summary, err := svc.Summary(context.Background(), "")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.TotalIssues != 22 {
		t.Errorf("TotalIssues = %d, want 22", summary.TotalIssues)
	}
	if summary.TotalProjects != 2 {
		t.Errorf("TotalProjects = %d, want 2", summary.TotalProjects)
	}

	proj := summary.Projects["PROJ"]
	if proj == nil || proj.TotalIssues != 15 {
		t.Fatalf("Projects[PROJ] = %+v, want 15 issues", proj)
	}
	if proj.Statuses["6"] != 10 || proj.Statuses["1"] != 5 {
		t.Errorf("Statuses = %v", proj.Statuses)
	}
	if proj.Priorities["2"] != 15 {
		t.Errorf("Priorities = %v", proj.Priorities)
	}
}

func TestListComponents(t *testing.T) {
	mock := testutil.NewMockSnowflake()
	defer mock.Close()

	router := newStatementRouter()
	router.respond("JIRA_COMPONENT_RHAI", [][]any{
		{"c1", "12325621", "backend", "Backend services", nil, "alice", 0, "N", "N", "1753767533.000000000"},
	})
	mock.SetHandler("/statements", router.handler)

	svc := newTestService(t, mock)
	list, err := svc.ListComponents(context.Background(), ListComponentsParams{
		Project:  "12325621",
		Archived: "n",
	})
	if err != nil {
		t.Fatalf("ListComponents() error = %v", err)
	}

	if list.TotalReturned != 1 {
		t.Fatalf("TotalReturned = %d, want 1", list.TotalReturned)
	}
	component := list.Components[0]
	if component.Name != "backend" || component.Description != "Backend services" {
		t.Errorf("component = %+v", component)
	}
	// _FIVETRAN_SYNCED is a timestamp column
	if component.Synced != "2025-07-29T05:38:53.000000+00:00" {
		t.Errorf("Synced = %v, want decoded timestamp", component.Synced)
	}

	statements := router.seen()
	if !strings.Contains(statements[0], "ARCHIVED = 'N'") {
		t.Errorf("archived filter not uppercased: %s", statements[0])
	}
}

func TestValidateColumns(t *testing.T) {
	if err := validateMappings(); err != nil {
		t.Fatalf("validateMappings() error = %v", err)
	}

	bad := []column{{expr: "SUBSTRING(DESCRIPTION, 1, 500)", name: "DESCRIPTION_TRUNCATED"}}
	if err := validateColumns("test", bad); err == nil {
		t.Error("expected error for expression without alias")
	}

	dup := []column{{expr: "ID", name: "ID"}, {expr: "ID", name: "ID"}}
	if err := validateColumns("test", dup); err == nil {
		t.Error("expected error for duplicate column")
	}
}
