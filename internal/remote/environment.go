package remote

import "strings"

const (
	ProductionURL = "https://rest.avatax.com"
	SandboxURL    = "https://sandbox-rest.avatax.com"

	EnvSandbox = "sandbox"
)

// ResolveEndpoint maps an environment tag to a base URL.
// "sandbox" (any case) selects the sandbox, an http(s) URL is used as-is,
// and everything else, including an empty tag, selects production.
func ResolveEndpoint(env string) string {
	switch {
	case env == "":
		return ProductionURL
	case strings.EqualFold(env, EnvSandbox):
		return SandboxURL
	case strings.HasPrefix(env, "https://"), strings.HasPrefix(env, "http://"):
		return env
	default:
		return ProductionURL
	}
}

// IsKnownEnvironment reports whether ResolveEndpoint recognises env rather than
// falling back to production.
func IsKnownEnvironment(env string) bool {
	return env == "" ||
		strings.EqualFold(env, "production") ||
		strings.EqualFold(env, EnvSandbox) ||
		strings.HasPrefix(env, "https://") ||
		strings.HasPrefix(env, "http://")
}
