package config

// UserConfigTemplate is written by "amanignore config init".
const UserConfigTemplate = `# amanignore user configuration
#
# Applies to every project on this machine. A project's .amanignore.yaml
# and AMANIGNORE_* environment variables take precedence.
version: 1

rules:
  # Ignore file, relative to the project root.
  file: .gitignore
  # Extra patterns compiled after the file's own lines.
  extra: []

matcher:
  # Treat everything below an ignored directory as ignored, the way git
  # does when it stops descending. Negations cannot re-include such paths.
  short_circuit_parents: false
  # Fold ASCII case when matching (core.ignoreCase).
  case_insensitive: false
  # Wildcard backtracking budget per rule and path; -1 disables it.
  max_backtrack: 10000

cache:
  # Cached verdicts; 0 disables the cache.
  size: 4096

scan:
  # Only report paths matching these globs, e.g. ["**/*.go"].
  include: []
  skip_ignored_dirs: false

watch:
  debounce: 200ms

log_level: info
`
