package container

// DockerName is the registry name of the docker engine.
const DockerName = "docker"

// NewDocker returns an engine backed by the docker CLI.
func NewDocker() Engine {
	return NewCLIEngine(DockerName)
}

func init() {
	Register(DockerName, NewDocker)
}
