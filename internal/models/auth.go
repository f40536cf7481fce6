package models

import "encoding/base64"

// MetaData describes the backend. It is fetched once per process.
type MetaData struct {
	Version               string `json:"version"`
	AuthenticationEnabled bool   `json:"authenticationEnabled"`
}

// Credentials are the username and password used for HTTP Basic auth
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BasicAuth returns the Authorization header value for c
func (c Credentials) BasicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}

// AuthState is the client's authentication state.
// IsAuthenticated implies Credentials != nil.
type AuthState struct {
	IsAuthenticated        bool
	Credentials            *Credentials
	AuthenticationRequired bool
	Error                  string
}

// CanConnect reports whether the live-update channel may be established
func (s AuthState) CanConnect(meta MetaData) bool {
	return !meta.AuthenticationEnabled || s.IsAuthenticated
}
