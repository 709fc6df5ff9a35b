package sdk

import (
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"
)

// Channel describes where the SDK tools archive comes from and which
// package-manager components the run pathway needs. The defaults can be
// overridden from a per-user YAML file.
type Channel struct {
	// ArchiveURL is the SDK tools archive URL with an {os} placeholder for
	// the host operating system name.
	ArchiveURL string `json:"archiveURL"`

	// Packages are the sdkmanager components required to run apps on an
	// emulated device.
	Packages []string `json:"packages"`
}

// DefaultChannel returns the stock distribution channel. The URL pattern has
// existed since approximately 2017 and the tools it downloads carry their own
// updater.
func DefaultChannel() Channel {
	return Channel{
		ArchiveURL: "https://dl.google.com/android/repository/sdk-tools-{os}-4333796.zip",
		Packages: []string{
			"platforms;android-28",
			"system-images;android-28;default;x86",
			"emulator",
			"platform-tools",
		},
	}
}

// LoadChannel returns the default channel overlaid with any overrides found
// at path. A missing file is not an error.
func LoadChannel(path string) (Channel, error) {
	channel := DefaultChannel()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return channel, nil
	}
	if err != nil {
		return Channel{}, fmt.Errorf("failed to read channel config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &channel); err != nil {
		return Channel{}, fmt.Errorf("failed to parse channel config %s: %w", path, err)
	}
	return channel, nil
}

func (c Channel) archiveURLFor(hostOS string) string {
	return strings.ReplaceAll(c.ArchiveURL, "{os}", hostOS)
}
