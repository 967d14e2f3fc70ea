package hcloud

// Project is a project as returned by the API. ID is assigned by the provider and never changes.
type Project struct {
	ID                  uint64  `json:"id" yaml:"id"`
	Name                string  `json:"name" yaml:"name"`
	UsageAlertThreshold *string `json:"usage_alert_threshold" yaml:"usage_alert_threshold"`
}

// Pagination is the page cursor of a listing. A nil NextPage marks the last page.
type Pagination struct {
	Page     int  `json:"page"`
	PerPage  int  `json:"per_page"`
	NextPage *int `json:"next_page"`
}

// Meta carries listing metadata.
type Meta struct {
	Pagination Pagination `json:"pagination"`
}

// ProjectListResponse is one page of GET /_projects.
type ProjectListResponse struct {
	Projects []Project `json:"projects"`
	Meta     Meta      `json:"meta"`
}

// CreateProjectRequest is the body of POST /_projects.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// TokenType is the scope of an issued token.
type TokenType string

const (
	// TokenTypeUser is a token with the full privileges of the account.
	TokenTypeUser TokenType = "user"
	// TokenTypeProjectUser is a token scoped to a single project.
	TokenTypeProjectUser TokenType = "project_user"
)

// TokenRequest is the body of POST /_tokens.
type TokenRequest struct {
	Type        TokenType `json:"type"`
	AccessToken string    `json:"access_token,omitempty"`
	IDToken     string    `json:"id_token,omitempty"`
	Project     string    `json:"project,omitempty"`
}

// ErrorResponse is the API's error envelope.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
