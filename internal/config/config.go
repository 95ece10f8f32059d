package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envWorkspaceID = "BOTPRESS_WORKSPACE_ID"
	envBotID       = "BOTPRESS_BOT_ID"
	envToken       = "BOTPRESS_TOKEN"
)

// Credentials carries the three values every Botpress API call must present.
type Credentials struct {
	WorkspaceID string
	BotID       string
	Token       string
}

// Load reads credentials from the environment. Missing values are returned as
// empty strings; call Validate before using them.
func Load() Credentials {
	v := viper.New()
	v.AutomaticEnv()
	return Credentials{
		WorkspaceID: v.GetString(envWorkspaceID),
		BotID:       v.GetString(envBotID),
		Token:       v.GetString(envToken),
	}
}

// Validate reports every missing credential by its environment variable name.
func (c Credentials) Validate() error {
	var missing []string
	if c.WorkspaceID == "" {
		missing = append(missing, envWorkspaceID)
	}
	if c.BotID == "" {
		missing = append(missing, envBotID)
	}
	if c.Token == "" {
		missing = append(missing, envToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
