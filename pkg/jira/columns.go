package jira

import (
	"fmt"
	"strings"
)

// column pairs a SELECT expression with the result column name it produces.
// Keeping both in one table means the SELECT list and the positional decode
// order cannot drift apart.
type column struct {
	expr string
	name string
}

var issueListColumns = []column{
	{"ID", "ID"},
	{"ISSUE_KEY", "ISSUE_KEY"},
	{"PROJECT", "PROJECT"},
	{"ISSUENUM", "ISSUENUM"},
	{"ISSUETYPE", "ISSUETYPE"},
	{"SUMMARY", "SUMMARY"},
	{"SUBSTRING(DESCRIPTION, 1, 500) as DESCRIPTION_TRUNCATED", "DESCRIPTION_TRUNCATED"},
	{"DESCRIPTION", "DESCRIPTION"},
	{"PRIORITY", "PRIORITY"},
	{"ISSUESTATUS", "ISSUESTATUS"},
	{"RESOLUTION", "RESOLUTION"},
	{"CREATED", "CREATED"},
	{"UPDATED", "UPDATED"},
	{"DUEDATE", "DUEDATE"},
	{"RESOLUTIONDATE", "RESOLUTIONDATE"},
	{"VOTES", "VOTES"},
	{"WATCHES", "WATCHES"},
	{"ENVIRONMENT", "ENVIRONMENT"},
	{"COMPONENT", "COMPONENT"},
	{"FIXFOR", "FIXFOR"},
}

var issueDetailColumns = []column{
	{"ID", "ID"},
	{"ISSUE_KEY", "ISSUE_KEY"},
	{"PROJECT", "PROJECT"},
	{"ISSUENUM", "ISSUENUM"},
	{"ISSUETYPE", "ISSUETYPE"},
	{"SUMMARY", "SUMMARY"},
	{"DESCRIPTION", "DESCRIPTION"},
	{"PRIORITY", "PRIORITY"},
	{"ISSUESTATUS", "ISSUESTATUS"},
	{"RESOLUTION", "RESOLUTION"},
	{"CREATED", "CREATED"},
	{"UPDATED", "UPDATED"},
	{"DUEDATE", "DUEDATE"},
	{"RESOLUTIONDATE", "RESOLUTIONDATE"},
	{"VOTES", "VOTES"},
	{"WATCHES", "WATCHES"},
	{"ENVIRONMENT", "ENVIRONMENT"},
	{"COMPONENT", "COMPONENT"},
	{"FIXFOR", "FIXFOR"},
	{"TIMEORIGINALESTIMATE", "TIMEORIGINALESTIMATE"},
	{"TIMEESTIMATE", "TIMEESTIMATE"},
	{"TIMESPENT", "TIMESPENT"},
	{"WORKFLOW_ID", "WORKFLOW_ID"},
	{"SECURITY", "SECURITY"},
	{"ARCHIVED", "ARCHIVED"},
	{"ARCHIVEDDATE", "ARCHIVEDDATE"},
}

var projectSummaryColumns = []column{
	{"PROJECT", "PROJECT"},
	{"ISSUESTATUS", "ISSUESTATUS"},
	{"PRIORITY", "PRIORITY"},
	{"COUNT(*) as COUNT", "COUNT"},
}

var componentColumns = []column{
	{"ID", "ID"},
	{"PROJECT", "PROJECT"},
	{"CNAME", "CNAME"},
	{"DESCRIPTION", "DESCRIPTION"},
	{"URL", "URL"},
	{"LEAD", "LEAD"},
	{"ASSIGNEETYPE", "ASSIGNEETYPE"},
	{"ARCHIVED", "ARCHIVED"},
	{"DELETED", "DELETED"},
	{"_FIVETRAN_SYNCED", "_FIVETRAN_SYNCED"},
}

var labelColumns = []column{
	{"ISSUE", "ISSUE"},
	{"LABEL", "LABEL"},
}

var commentColumns = []column{
	{"ID", "ID"},
	{"ISSUEID", "ISSUEID"},
	{"ROLELEVEL", "ROLELEVEL"},
	{"BODY", "BODY"},
	{"CREATED", "CREATED"},
	{"UPDATED", "UPDATED"},
}

var linkColumns = []column{
	{"LINK_ID", "LINK_ID"},
	{"SOURCE", "SOURCE"},
	{"DESTINATION", "DESTINATION"},
	{"SEQUENCE", "SEQUENCE"},
	{"LINKNAME", "LINKNAME"},
	{"INWARD", "INWARD"},
	{"OUTWARD", "OUTWARD"},
	{"SOURCE_KEY", "SOURCE_KEY"},
	{"DESTINATION_KEY", "DESTINATION_KEY"},
	{"SOURCE_SUMMARY", "SOURCE_SUMMARY"},
	{"DESTINATION_SUMMARY", "DESTINATION_SUMMARY"},
}

var statusChangeColumns = []column{
	{"ISSUE_KEY", "ISSUE_KEY"},
	{"CHANGE_TIMESTAMP", "CHANGE_TIMESTAMP"},
	{"FROM_STATUS", "FROM_STATUS"},
	{"TO_STATUS", "TO_STATUS"},
	{"STATUS_TRANSITION", "STATUS_TRANSITION"},
}

// selectList renders the SELECT expression list for a column table.
func selectList(cols []column) string {
	exprs := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = c.expr
	}
	return strings.Join(exprs, ", ")
}

// names returns the positional result column names for row decoding.
func names(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// validateColumns checks a column table for empty entries, duplicates, and
// expressions that do not produce their declared column name.
func validateColumns(query string, cols []column) error {
	if len(cols) == 0 {
		return fmt.Errorf("%s: empty column mapping", query)
	}

	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.expr == "" || c.name == "" {
			return fmt.Errorf("%s: column mapping with empty expression or name", query)
		}
		upper := strings.ToUpper(c.name)
		if _, dup := seen[upper]; dup {
			return fmt.Errorf("%s: duplicate column %s", query, c.name)
		}
		seen[upper] = struct{}{}
		if !strings.HasSuffix(strings.ToUpper(c.expr), upper) {
			return fmt.Errorf("%s: expression %q does not produce column %s", query, c.expr, c.name)
		}
	}
	return nil
}

// validateMappings runs once at service construction so a drifted column
// table fails fast instead of silently misaligning decoded records.
func validateMappings() error {
	tables := []struct {
		query string
		cols  []column
	}{
		{"issue list", issueListColumns},
		{"issue detail", issueDetailColumns},
		{"project summary", projectSummaryColumns},
		{"component list", componentColumns},
		{"issue labels", labelColumns},
		{"issue comments", commentColumns},
		{"issue links", linkColumns},
		{"status changes", statusChangeColumns},
	}

	for _, t := range tables {
		if err := validateColumns(t.query, t.cols); err != nil {
			return err
		}
	}
	return nil
}
