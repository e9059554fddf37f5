package dto

// ConnectRequest carries the OAuth callback parameters.
type ConnectRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state" validate:"required"`
}

// TestConnectionRequest carries manually entered vendor credentials.
type TestConnectionRequest struct {
	Provider    string            `json:"provider" validate:"required"`
	Credentials map[string]string `json:"credentials" validate:"required"`
}
