// Package model defines the database models for Intellecta.
//
// This package contains GORM models that map to the PostgreSQL schema
// managed by the migrations in db/migrations.
//
// # Core Models
//
//   - User: Local anchor row for an identity provider subject
//   - Role: Reference data for project roles (admin, developer, member)
//   - Project: A project with a unique short key
//   - UserRole: Role grant of a user within a project
//   - ProjectUser: Plain project membership, independent of role
//   - Ticket: Work item within a project
//   - TicketAssignment: Current assignee of a ticket
//   - Status: Reference data for ticket statuses
//
// # Database Schema
//
//   - users, roles, statuses: identity and reference data
//   - projects: projects, unique on project_key
//   - user_roles: grants, unique on (user_id, project_id)
//   - project_users: memberships, keyed by (project_id, user_id)
//   - tickets, ticket_assignments: tickets and their single assignee
package model
