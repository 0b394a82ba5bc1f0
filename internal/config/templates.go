package config

// GlobalConfigTemplate is the default template for
// ~/.config/workbench/config.yaml. It includes comments explaining each option.
const GlobalConfigTemplate = `# Workbench global configuration
# Location: ~/.config/workbench/config.yaml

# Schema version (required)
version: 1

# Container engine used by the sandbox: docker or podman
default_engine: docker

# Host paths shared with sandbox containers (defaults shown)
credentials:
  git_config: ~/.gitconfig
  ssh_keys: ~/.ssh
`

// ProjectConfigTemplate is the default template for .workbench.yaml.
// It includes commented examples for all configuration options.
const ProjectConfigTemplate = `# Workbench project configuration
# Location: .workbench.yaml

# Schema version (required)
version: 1

# Repository prepared by "workbench setup"
# repo_url: https://github.com/keon/algorithms.git

# Branch created after cloning
# branch: generated-tests

# Dependency manifest installed into the virtual environment
# manifest: requirements.txt

# Interpreter used to create the virtual environment
# python: python3

# Environment variables for setup commands
# env:
#   # Literal value
#   PYTHONDONTWRITEBYTECODE: "1"
#
#   # Reference host environment variable
#   GEMINI_API_KEY: ${GEMINI_API_KEY}
#
#   # Reference file contents (entire file becomes value)
#   API_KEY:
#     from_file: ~/.secrets/api-key

# Extra commands to run in the clone after provisioning
# setup:
#   - ./venv/bin/pip install coverage

# Sandbox image built and run by "workbench sandbox"
# image:
#   tag: workbench
#   context: .
#   dockerfile: Dockerfile
#   workdir: /workspace

# Extra container mounts (the git config and working directory are
# always mounted)
# mounts:
#   - source: ~/.cache/pip
#     target: /root/.cache/pip
`
