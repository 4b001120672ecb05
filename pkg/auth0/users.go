package auth0

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// usersPageSize is the Management API's maximum page size
const usersPageSize = 100

// User is a user in the Auth0 directory
type User struct {
	UserID       string                 `json:"user_id"`
	Email        string                 `json:"email"`
	Name         string                 `json:"name,omitempty"`
	Picture      string                 `json:"picture,omitempty"`
	LastLogin    string                 `json:"last_login,omitempty"`
	CreatedAt    string                 `json:"created_at,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// FullName returns the user's display name, preferring user_metadata.fullName
func (u User) FullName() string {
	if name, ok := u.UserMetadata["fullName"].(string); ok && name != "" {
		return name
	}
	return u.Name
}

// UserUpdate holds the fields of a user that may be changed. Empty fields
// are left untouched.
type UserUpdate struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u UserUpdate) IsEmpty() bool {
	return u == UserUpdate{}
}

type usersPage struct {
	Start int    `json:"start"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
	Users []User `json:"users"`
}

// ListUsers returns every user in the tenant
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	return c.searchUsers(ctx, "")
}

// UsersByIDs returns the users with the given ids. Unknown ids are omitted.
func (c *Client) UsersByIDs(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	return c.searchUsers(ctx, fmt.Sprintf("user_id:(%s)", strings.Join(quoted, " OR ")))
}

func (c *Client) searchUsers(ctx context.Context, q string) ([]User, error) {
	users := []User{}
	for page := 0; ; page++ {
		params := url.Values{
			"page":           {strconv.Itoa(page)},
			"per_page":       {strconv.Itoa(usersPageSize)},
			"include_totals": {"true"},
		}
		if q != "" {
			params.Set("q", q)
			params.Set("search_engine", "v3")
		}

		var result usersPage
		if err := c.management(ctx, http.MethodGet, "/api/v2/users?"+params.Encode(), nil, &result); err != nil {
			return nil, err
		}
		users = append(users, result.Users...)

		if len(result.Users) < usersPageSize || len(users) >= result.Total {
			return users, nil
		}
	}
}

// UpdateUser changes a user's profile fields
func (c *Client) UpdateUser(ctx context.Context, userID string, update UserUpdate) (*User, error) {
	body := map[string]interface{}{}
	if update.Email != "" {
		body["email"] = update.Email
	}
	if update.Password != "" {
		body["password"] = update.Password
		body["connection"] = c.connection
	}
	if update.Name != "" {
		body["name"] = update.Name
		body["user_metadata"] = map[string]string{"fullName": update.Name}
	}
	if update.Picture != "" {
		body["picture"] = update.Picture
	}

	var user User
	if err := c.management(ctx, http.MethodPatch, "/api/v2/users/"+url.PathEscape(userID), body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
