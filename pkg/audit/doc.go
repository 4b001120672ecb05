// Package audit provides audit logging for Intellecta operations.
//
// Security-relevant operations such as logins, project creation, membership
// grants and ticket assignment are written as RFC5424 syslog records and,
// when a Store is configured, persisted to the messages table.
//
// # Event Types
//
//   - LoginEvent
//   - ProjectCreateEvent
//   - MemberAddEvent
//   - TicketAssignEvent
//
// # Usage
//
//	auditor := audit.NewAuditor(audit.Options{Enabled: true, Store: audit.NewStore(sqlDB)})
//	auditor.Log(ctx, audit.LoginEvent{Email: email, ClientIP: ip, Success: true})
package audit
