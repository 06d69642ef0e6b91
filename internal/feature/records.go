// ABOUTME: Projects and audit log screens
// ABOUTME: Both are read-only tables over the shared filter and report protocol

package feature

import (
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/listing"
)

// Project and audit log filter fields
const (
	ProjectSearch     = "search"
	ProjectInternName = "intern_name"

	AuditSearch = "search"
	AuditEvent  = "event"
)

// Audit events recorded by the backend
var AuditEvents = []string{"login", "created", "updated", "deleted"}

// NewProjects creates the projects screen store
func NewProjects(d Deps) *Table[client.Project] {
	return newTable(d, tableSpec[client.Project]{
		key:      "projects",
		text:     []string{ProjectSearch, ProjectInternName},
		sortKeys: []string{"title", "impact", "intern_name", "created_at"},
		dateFrom: "date_from",
		dateTo:   "date_to",
		list: listing.Config[client.Project]{
			Resource:    "projects",
			FailMessage: "Failed to load projects. Please try again.",
			Fetch:       d.API.FilterProjects,
			Report:      d.API.ProjectsReport,
		},
	})
}

// NewAuditLogs creates the audit log screen store, newest first
func NewAuditLogs(d Deps) *Table[client.AuditLog] {
	return newTable(d, tableSpec[client.AuditLog]{
		key:         "auditlogs",
		text:        []string{AuditSearch},
		selects:     []string{AuditEvent},
		sortKeys:    []string{"user", "event", "created_at"},
		dateFrom:    "date_from",
		dateTo:      "date_to",
		defaultSort: listing.Sort{Key: "created_at", Direction: listing.Desc},
		list: listing.Config[client.AuditLog]{
			Resource:    "auditlogs",
			FailMessage: "Failed to load audit logs. Please try again.",
			Fetch:       d.API.FilterAuditLogs,
			Report:      d.API.AuditLogsReport,
		},
	})
}
