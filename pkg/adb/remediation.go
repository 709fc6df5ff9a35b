package adb

import (
	"strings"
	"text/template"

	"github.com/satchelcli/satchel/pkg/sdk"
)

// remediationTemplate walks the user through finding or creating a usable
// device, with the concrete tool paths of the installed SDK filled in so
// every command is copy-pasteable.
var remediationTemplate = template.Must(template.New("remediation").Parse(`You can get a list of valid devices by running this command and looking in the
first column of output.

$ {{.ADB}} devices -l

If you do not see any devices, you can create one by running these commands:

$ {{.SDKManager}} "platforms;android-28" \
    "system-images;android-28;default;x86" "emulator" "platform-tools"

$ {{.AVDManager}} --verbose create avd --name robotfriend \
    --abi x86 --package 'system-images;android-28;default;x86' --device pixel

$ {{.Emulator}} -avd robotfriend &

Then use the device bridge to find the device name by running this command and
looking in the first column of output.

$ {{.ADB}} devices -l
`))

func (d *Deployer) remediation() string {
	return remediationFor(d.SDK)
}

// MissingDevice is the error the run pathway reports when no target device
// was supplied. Exposed so the command layer can fail before provisioning or
// deployment does any work.
func MissingDevice(s *sdk.SDK) error {
	return &MissingDeviceError{Remediation: remediationFor(s)}
}

func remediationFor(s *sdk.SDK) string {
	var buf strings.Builder
	err := remediationTemplate.Execute(&buf, struct {
		ADB        string
		SDKManager string
		AVDManager string
		Emulator   string
	}{
		ADB:        s.ADB(),
		SDKManager: s.SDKManager(),
		AVDManager: s.AVDManager(),
		Emulator:   s.Emulator(),
	})
	if err != nil {
		// The template is static; execution can only fail on a broken edit.
		return "run the device bridge's devices command to list valid devices"
	}
	return buf.String()
}
