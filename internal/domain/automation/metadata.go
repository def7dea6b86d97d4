package automation

import (
	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
)

// PlatformMetadata is a closed union of per-platform metadata variants. Exactly
// one variant matching the automation's platform must be set; collectors
// validate at the boundary so the core never inspects untyped maps.
type PlatformMetadata struct {
	Google    *GoogleMetadata    `json:"google,omitempty"`
	Slack     *SlackMetadata     `json:"slack,omitempty"`
	GitHub    *GitHubMetadata    `json:"github,omitempty"`
	Microsoft *MicrosoftMetadata `json:"microsoft,omitempty"`
}

// GoogleMetadata describes a Google Workspace OAuth grant or Apps Script.
type GoogleMetadata struct {
	ClientID     string `json:"client_id"`
	AppName      string `json:"app_name"`
	ScriptSource string `json:"script_source,omitempty"`
	Verified     bool   `json:"verified"`
	UserEmail    string `json:"user_email,omitempty"`
}

// SlackMetadata describes a Slack app or bot user.
type SlackMetadata struct {
	AppID       string `json:"app_id"`
	BotUserID   string `json:"bot_user_id,omitempty"`
	Description string `json:"description,omitempty"`
	IsWorkflow  bool   `json:"is_workflow"`
	InstalledBy string `json:"installed_by,omitempty"`
}

// GitHubMetadata describes a GitHub App installation or Actions workflow.
type GitHubMetadata struct {
	AppSlug      string `json:"app_slug,omitempty"`
	Repository   string `json:"repository,omitempty"`
	WorkflowPath string `json:"workflow_path,omitempty"`
	WorkflowYAML string `json:"workflow_yaml,omitempty"`
}

// MicrosoftMetadata describes an Entra app registration or Power Automate flow.
type MicrosoftMetadata struct {
	AppID           string   `json:"app_id"`
	PublisherDomain string   `json:"publisher_domain,omitempty"`
	FlowDisplayName string   `json:"flow_display_name,omitempty"`
	ConnectorNames  []string `json:"connector_names,omitempty"`
}

// Validate checks that exactly one variant is set and that it matches the
// platform the automation was discovered on.
func (m PlatformMetadata) Validate(platform Platform) error {
	count := 0
	if m.Google != nil {
		count++
	}
	if m.Slack != nil {
		count++
	}
	if m.GitHub != nil {
		count++
	}
	if m.Microsoft != nil {
		count++
	}
	if count != 1 {
		return errors.NewValidationError("INVALID_METADATA",
			"platform metadata must carry exactly one variant")
	}

	matches := false
	switch platform {
	case PlatformGoogle:
		matches = m.Google != nil
	case PlatformSlack:
		matches = m.Slack != nil
	case PlatformGitHub:
		matches = m.GitHub != nil
	case PlatformMicrosoft:
		matches = m.Microsoft != nil
	}
	if !matches {
		return errors.NewValidationError("METADATA_PLATFORM_MISMATCH",
			"metadata variant does not match automation platform")
	}
	return nil
}

// DisplayText returns the human-facing text a classifier should inspect: the
// app or flow name plus any descriptive text the platform exposes.
func (m PlatformMetadata) DisplayText() string {
	switch {
	case m.Google != nil:
		return m.Google.AppName
	case m.Slack != nil:
		if m.Slack.Description != "" {
			return m.Slack.Description
		}
		return m.Slack.AppID
	case m.GitHub != nil:
		if m.GitHub.AppSlug != "" {
			return m.GitHub.AppSlug
		}
		return m.GitHub.WorkflowPath
	case m.Microsoft != nil:
		if m.Microsoft.FlowDisplayName != "" {
			return m.Microsoft.FlowDisplayName
		}
		return m.Microsoft.PublisherDomain
	}
	return ""
}

// ClientIdentifier returns the platform-side client or app identifier.
func (m PlatformMetadata) ClientIdentifier() string {
	switch {
	case m.Google != nil:
		return m.Google.ClientID
	case m.Slack != nil:
		return m.Slack.AppID
	case m.GitHub != nil:
		return m.GitHub.AppSlug
	case m.Microsoft != nil:
		return m.Microsoft.AppID
	}
	return ""
}

// SourceCode returns any script or workflow source the platform exposes for
// this automation, empty when none is available.
func (m PlatformMetadata) SourceCode() string {
	switch {
	case m.Google != nil:
		return m.Google.ScriptSource
	case m.GitHub != nil:
		return m.GitHub.WorkflowYAML
	}
	return ""
}
