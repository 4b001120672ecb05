package model

//go:generate go run github.com/dmarkham/enumer -type RoleName -trimprefix RoleName -transform snake -yaml -text -output role_name.gen.go

// RoleName enumerates the roles seeded by the migrations. Values match the
// seeded role_id, but lookups always go through the role catalog.
type RoleName int

const (
	RoleNameAdmin RoleName = iota + 1
	RoleNameDeveloper
	RoleNameMember
)
