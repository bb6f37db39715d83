package bib

// Host is the surface this module uses to talk back to the build
// orchestrator. Every signal is an explicit call: dependency tracking,
// recompilation requests and message reporting all belong to the host.
type Host interface {
	// RegisterDependency declares path as a source dependency of the document.
	RegisterDependency(path string)
	// UnregisterDependency removes a previously registered dependency.
	UnregisterDependency(path string)
	// RequestRecompilation asks the host to schedule another typesetting pass.
	RequestRecompilation()
	// Log reports a module-level diagnostic line.
	Log(format string, args ...any)
	// Info reports a user-facing informational message.
	Info(format string, args ...any)
}

// NopHost discards every callback. Useful when only the parsers are needed.
type NopHost struct{}

func (NopHost) RegisterDependency(string)   {}
func (NopHost) UnregisterDependency(string) {}
func (NopHost) RequestRecompilation()       {}
func (NopHost) Log(string, ...any)          {}
func (NopHost) Info(string, ...any)         {}
