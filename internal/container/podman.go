package container

// PodmanName is the registry name of the podman engine.
const PodmanName = "podman"

// NewPodman returns an engine backed by the podman CLI.
// Podman's run/build surface is flag-compatible with docker for everything
// workbench emits, so it shares the CLI implementation.
func NewPodman() Engine {
	return NewCLIEngine(PodmanName)
}

func init() {
	Register(PodmanName, NewPodman)
}
