package model

import (
	"fmt"
	"time"
)

// Audit action names, dot-namespaced <resource>.<action>. Keeping them as
// constants keeps the recorded strings consistent across the application and
// makes exact-match filtering reliable.
const (
	// Authentication events
	ActionLoginSuccess       = "auth.login.success"
	ActionLoginFailure       = "auth.login.failure"
	ActionLogout             = "auth.logout"
	ActionTokenRefresh       = "auth.token.refresh"
	ActionEmailVerifyRequest = "auth.email.verify_request"
	ActionEmailVerifySuccess = "auth.email.verify_success"

	// User management
	ActionUserCreate     = "user.create"
	ActionUserUpdate     = "user.update"
	ActionUserDelete     = "user.delete"
	ActionUserRoleChange = "user.role.change"

	// Employee management
	ActionEmployeeCreate           = "employee.create"
	ActionEmployeeUpdate           = "employee.update"
	ActionEmployeeDelete           = "employee.delete"
	ActionEmployeeCompetencyAdd    = "employee.competency.add"
	ActionEmployeeCompetencyUpdate = "employee.competency.update"
	ActionEmployeeCompetencyRemove = "employee.competency.remove"

	// Competency management
	ActionCompetencyCreate = "competency.create"
	ActionCompetencyUpdate = "competency.update"
	ActionCompetencyDelete = "competency.delete"

	// Career path management
	ActionCareerPathCreate           = "career_path.create"
	ActionCareerPathUpdate           = "career_path.update"
	ActionCareerPathDelete           = "career_path.delete"
	ActionCareerPathCompetencyAdd    = "career_path.competency.add"
	ActionCareerPathCompetencyRemove = "career_path.competency.remove"

	// Gap analysis
	ActionGapAnalysisView = "gap_analysis.view"
)

// AuditLog is an immutable event record in the `audit_logs` table. Rows are
// only ever inserted; the actor reference is nulled when the account is
// deleted so history survives account removal.
//
// Fields:
//
//	ID        : primary key identifier.
//	Timestamp : when the event occurred (UTC).
//	UserID    : actor who performed the action (null for anonymous events).
//	Action    : dot-namespaced action name, e.g. "auth.login.success".
//	TargetType: type of the affected resource (null when none).
//	TargetID  : id of the affected resource (null when none).
//	Details   : free-form context: IP, user agent, changed fields.
type AuditLog struct {
	ID         uint64         // audit_logs.id
	Timestamp  time.Time      // audit_logs.timestamp
	UserID     *uint64        // audit_logs.user_id (nullable)
	Action     string         // audit_logs.action
	TargetType *string        // audit_logs.target_type (nullable)
	TargetID   *uint64        // audit_logs.target_id (nullable)
	Details    map[string]any // audit_logs.details (JSON)
}

// EventSummary renders a short human-readable description of the event.
func (l AuditLog) EventSummary() string {
	actor := "Anonymous"
	if l.UserID != nil {
		actor = fmt.Sprintf("User %d", *l.UserID)
	}
	target := ""
	if l.TargetType != nil {
		if l.TargetID != nil {
			target = fmt.Sprintf(" on %s:%d", *l.TargetType, *l.TargetID)
		} else {
			target = fmt.Sprintf(" on %s", *l.TargetType)
		}
	}
	return fmt.Sprintf("%s - %s%s", actor, l.Action, target)
}
