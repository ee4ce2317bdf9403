package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# FedWatch Configuration

[watch]
# Candidate rate move size in basis points
step_basis_points = 25
# Widest candidate move, in steps (2 = up to 50bp hike or cut)
max_steps = 2
# Number of upcoming FOMC meetings to solve
num_upcoming = 6
# Live target rate range in percent. Leave both at 0.0 to fetch the
# range from FRED for the watch date.
rate_lower = 0.0
rate_upper = 0.0
# Probability conservation tolerance
tolerance = 1e-9

[data]
# Directory of per-contract CSV price files (ZQH25.csv etc).
# When empty, prices are read from the SQLite quote store.
contracts_dir = ""
# SQLite quote store path (defaults to the config directory)
#database_path = ""

[fred]
# Fetch the target rate range from FRED when not configured above
enabled = true
base_url = "https://fred.stlouisfed.org/graph/fredgraph.csv"
timeout = "30s"
max_retry_time = "30s"

[logging]
# Log level: debug, info, warn, error
level = "info"
console = true
file = true
#file_path = ""
max_size = 50
max_backups = 5
max_age = 30
`

// createTemplateConfig writes a commented config template on first run.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
