// Package auth0 is a narrow client for the Auth0 Authentication and
// Management APIs.
//
// It covers the password grant login used by the API's login endpoint,
// user creation for signup, and the user directory lookups that back the
// project membership screens. Management API tokens are obtained with the
// client credentials grant and cached until shortly before they expire.
package auth0
