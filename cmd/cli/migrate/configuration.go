package migrate

const (
	defaultDestinationRefConstant = "main"
	defaultLabelNameConstant      = "GitOrigin-RevId"

	// OriginTypeGit and OriginTypeFolder are the recognized values for
	// CommandConfiguration.OriginType. Git is the default: a history-aware
	// local clone. Folder is a history-less snapshot of a plain directory,
	// useful for one-shot imports of vendored or generated trees.
	OriginTypeGit    = "git"
	OriginTypeFolder = "folder"
)

// CommandConfiguration captures configuration values for the migrate
// command family, shared by its squash/iterative/change-request
// subcommands and overridable per-invocation by flags.
type CommandConfiguration struct {
	OriginType           string   `mapstructure:"origin_type"`
	OriginPath           string   `mapstructure:"origin_path"`
	OriginRef            string   `mapstructure:"origin_ref"`
	DestinationPath      string   `mapstructure:"destination_path"`
	DestinationRef       string   `mapstructure:"destination_ref"`
	DestinationLabel     string   `mapstructure:"destination_label"`
	Include              []string `mapstructure:"include"`
	Exclude              []string `mapstructure:"exclude"`
	DefaultAuthor        string   `mapstructure:"default_author"`
	DisallowUpstreamAuthors bool  `mapstructure:"disallow_upstream_authors"`
	PromptOnFirstCommit  bool     `mapstructure:"prompt_on_first_commit"`
}

// DefaultConfigurationValues returns the Viper default-value map for this
// command family, keyed under configurationKeyPrefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".destination_ref":   defaultDestinationRefConstant,
		configurationKeyPrefix + ".destination_label": defaultLabelNameConstant,
		configurationKeyPrefix + ".origin_type":        OriginTypeGit,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	if len(sanitized.DestinationRef) == 0 {
		sanitized.DestinationRef = defaultDestinationRefConstant
	}
	if len(sanitized.DestinationLabel) == 0 {
		sanitized.DestinationLabel = defaultLabelNameConstant
	}
	if len(sanitized.OriginType) == 0 {
		sanitized.OriginType = OriginTypeGit
	}
	return sanitized
}
