package jira

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/cache"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/snowflake"
)

// Enrich attaches secondary per-issue data to a set of issue ids. The four
// branches run concurrently, each writing into its own result slot; a failed
// branch contributes an empty map without disturbing the others.
func (s *Service) Enrich(ctx context.Context, issueIDs []string, tokenOverride string) EnrichmentResult {
	result := EnrichmentResult{
		Labels:        map[string][]string{},
		Comments:      map[string][]Comment{},
		Links:         map[string][]Link{},
		StatusChanges: map[string][]StatusChange{},
	}

	if len(issueIDs) == 0 {
		return result
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		result.Labels = s.issueLabels(ctx, issueIDs, tokenOverride)
	}()
	go func() {
		defer wg.Done()
		result.Comments = s.issueComments(ctx, issueIDs, tokenOverride)
	}()
	go func() {
		defer wg.Done()
		result.Links = s.issueLinks(ctx, issueIDs, tokenOverride)
	}()
	go func() {
		defer wg.Done()
		result.StatusChanges = s.statusChanges(ctx, issueIDs, tokenOverride)
	}()

	wg.Wait()
	return result
}

// issueLabels returns each issue's labels keyed by issue id.
func (s *Service) issueLabels(ctx context.Context, issueIDs []string, tokenOverride string) map[string][]string {
	labels := map[string][]string{}

	ids, inClause := validateIDs(issueIDs)
	if len(ids) == 0 {
		return labels
	}

	key := cache.Key("issue_labels", map[string]string{"ids": strings.Join(ids, ",")})
	if s.gw.Store().Get(ctx, key, &labels) {
		return labels
	}

	sql := fmt.Sprintf(`SELECT %s FROM JIRA_LABEL_RHAI WHERE ISSUE IN (%s) AND LABEL IS NOT NULL`,
		selectList(labelColumns), inClause)

	rows, complete, err := s.gw.ExecuteChecked(ctx, sql, snowflake.ExecOptions{TokenOverride: tokenOverride})
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching labels failed")
		return labels
	}

	for _, row := range rows {
		record := snowflake.DecodeRow(names(labelColumns), row)
		issueID := asString(record["ISSUE"])
		label := asString(record["LABEL"])
		if issueID != "" && label != "" {
			labels[issueID] = append(labels[issueID], label)
		}
	}

	if complete {
		s.gw.Store().Set(ctx, key, labels)
	}
	return labels
}

// issueComments returns each issue's comments keyed by issue id, oldest
// first.
func (s *Service) issueComments(ctx context.Context, issueIDs []string, tokenOverride string) map[string][]Comment {
	comments := map[string][]Comment{}

	ids, inClause := validateIDs(issueIDs)
	if len(ids) == 0 {
		return comments
	}

	key := cache.Key("issue_comments", map[string]string{"ids": strings.Join(ids, ",")})
	if s.gw.Store().Get(ctx, key, &comments) {
		return comments
	}

	sql := fmt.Sprintf(`SELECT %s FROM JIRA_COMMENT_NON_PII WHERE ISSUEID IN (%s) AND BODY IS NOT NULL ORDER BY ISSUEID, CREATED ASC`,
		selectList(commentColumns), inClause)

	rows, complete, err := s.gw.ExecuteChecked(ctx, sql, snowflake.ExecOptions{TokenOverride: tokenOverride})
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching comments failed")
		return comments
	}

	for _, row := range rows {
		record := snowflake.DecodeRow(names(commentColumns), row)
		issueID := asString(record["ISSUEID"])
		if issueID == "" {
			continue
		}
		comments[issueID] = append(comments[issueID], Comment{
			ID:        record["ID"],
			RoleLevel: record["ROLELEVEL"],
			Body:      asString(record["BODY"]),
			Created:   record["CREATED"],
			Updated:   record["UPDATED"],
		})
	}

	if complete {
		s.gw.Store().Set(ctx, key, comments)
	}
	return comments
}

// issueLinks returns each issue's links keyed by issue id. A link row is
// materialized in both directions, but only for ids in the requested set.
func (s *Service) issueLinks(ctx context.Context, issueIDs []string, tokenOverride string) map[string][]Link {
	links := map[string][]Link{}

	ids, inClause := validateIDs(issueIDs)
	if len(ids) == 0 {
		return links
	}

	key := cache.Key("issue_links", map[string]string{"ids": strings.Join(ids, ",")})
	if s.gw.Store().Get(ctx, key, &links) {
		return links
	}

	sql := fmt.Sprintf(`SELECT %s FROM JIRA_ISSUE_LINK_RHAI WHERE SOURCE IN (%s) OR DESTINATION IN (%s)`,
		selectList(linkColumns), inClause, inClause)

	rows, complete, err := s.gw.ExecuteChecked(ctx, sql, snowflake.ExecOptions{TokenOverride: tokenOverride})
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching links failed")
		return links
	}

	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	for _, row := range rows {
		record := snowflake.DecodeRow(names(linkColumns), row)
		source := asString(record["SOURCE"])
		destination := asString(record["DESTINATION"])

		if _, ok := requested[source]; ok {
			links[source] = append(links[source], Link{
				LinkID:              record["LINK_ID"],
				Relationship:        "outward",
				LinkName:            asString(record["LINKNAME"]),
				Description:         asString(record["OUTWARD"]),
				RelatedIssueID:      destination,
				RelatedIssueKey:     asString(record["DESTINATION_KEY"]),
				RelatedIssueSummary: asString(record["DESTINATION_SUMMARY"]),
			})
		}
		if _, ok := requested[destination]; ok {
			links[destination] = append(links[destination], Link{
				LinkID:              record["LINK_ID"],
				Relationship:        "inward",
				LinkName:            asString(record["LINKNAME"]),
				Description:         asString(record["INWARD"]),
				RelatedIssueID:      source,
				RelatedIssueKey:     asString(record["SOURCE_KEY"]),
				RelatedIssueSummary: asString(record["SOURCE_SUMMARY"]),
			})
		}
	}

	if complete {
		s.gw.Store().Set(ctx, key, links)
	}
	return links
}

// statusChanges returns each issue's workflow transitions keyed by issue
// key, oldest first.
func (s *Service) statusChanges(ctx context.Context, issueIDs []string, tokenOverride string) map[string][]StatusChange {
	changes := map[string][]StatusChange{}

	ids, inClause := validateIDs(issueIDs)
	if len(ids) == 0 {
		return changes
	}

	key := cache.Key("issue_status_changes", map[string]string{"ids": strings.Join(ids, ",")})
	if s.gw.Store().Get(ctx, key, &changes) {
		return changes
	}

	sql := fmt.Sprintf(`SELECT %s FROM JIRA_STATUS_CHANGE_RHAI WHERE ISSUE_ID IN (%s) ORDER BY ISSUE_KEY, CHANGE_TIMESTAMP ASC`,
		selectList(statusChangeColumns), inClause)

	rows, complete, err := s.gw.ExecuteChecked(ctx, sql, snowflake.ExecOptions{TokenOverride: tokenOverride})
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching status changes failed")
		return changes
	}

	for _, row := range rows {
		record := snowflake.DecodeRow(names(statusChangeColumns), row)
		issueKey := asString(record["ISSUE_KEY"])
		if issueKey == "" {
			continue
		}
		changes[issueKey] = append(changes[issueKey], StatusChange{
			IssueKey:         issueKey,
			ChangeTimestamp:  record["CHANGE_TIMESTAMP"],
			FromStatus:       asString(record["FROM_STATUS"]),
			ToStatus:         asString(record["TO_STATUS"]),
			StatusTransition: asString(record["STATUS_TRANSITION"]),
		})
	}

	if complete {
		s.gw.Store().Set(ctx, key, changes)
	}
	return changes
}

// validateIDs keeps only purely numeric ids, sorts them for deterministic
// cache keys, and renders the quoted IN clause. Non-numeric input is
// silently dropped so it can never reach the statement text.
func validateIDs(issueIDs []string) ([]string, string) {
	ids := make([]string, 0, len(issueIDs))
	for _, id := range issueIDs {
		if isNumeric(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, ""
	}
	sort.Strings(ids)

	return ids, "'" + strings.Join(ids, "','") + "'"
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
