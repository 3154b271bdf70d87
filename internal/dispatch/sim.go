package dispatch

import (
	"fmt"
	"hash/fnv"
	"path"
)

// simFunc is one deterministic in-process simulation. Simulations never
// fail and have no side effects beyond their return value.
type simFunc func(args ...any) any

// defaultSimulations builds the fixed per-method simulation table. One
// entry per known method; the dispatcher refuses anything outside it.
func defaultSimulations() map[string]simFunc {
	return map[string]simFunc{
		"saveFile": func(args ...any) any {
			name := stringArg(args, 0, "untitled")
			return path.Join("/virtual/storage", name)
		},
		"login": func(args ...any) any {
			user := stringArg(args, 0, "anonymous")
			return fmt.Sprintf("token-%x", digest(user))
		},
		"generateText": func(args ...any) any {
			prompt := stringArg(args, 0, "")
			return fmt.Sprintf("generated(%s)#%x", prompt, digest(prompt))
		},
		"checksum": func(args ...any) any {
			return digest(stringArg(args, 0, ""))
		},
		"sendMail": func(args ...any) any {
			to := stringArg(args, 0, "")
			subject := stringArg(args, 1, "")
			return fmt.Sprintf("msg-%x", digest(to+"\x00"+subject))
		},
	}
}

// SimulatedMethods returns the names of every method the simulation table
// can serve. Useful for callers probing dispatcher capabilities.
func (d *Dispatcher) SimulatedMethods() []string {
	names := make([]string, 0, len(d.sims))
	for name := range d.sims {
		names = append(names, name)
	}
	return names
}

func stringArg(args []any, i int, fallback string) string {
	if i >= len(args) {
		return fallback
	}
	if s, ok := args[i].(string); ok {
		return s
	}
	return fmt.Sprint(args[i])
}

func digest(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
